// Package workflow implements the upload, validate, submit and fallback
// state machine behind the proposal screens.
//
// All transitions happen under one mutex. Requests run on their own
// goroutine with a per-request context; a request whose slot has moved on
// (new selection, cancel, reset) has its response dropped.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

const (
	msgUploadFailed       = "upload failed"
	msgValidated          = "file validated successfully"
	msgGenerated          = "proposal generated successfully"
	msgFallbackUsed       = "the proposal could not be generated, the file was uploaded instead"
	msgValidationCanceled = "upload cancelled"
	msgSubmitCanceled     = "proposal submission was cancelled"
	msgGenerationFailed   = "document generation failed"
)

// Classifier turns a raw pick into a SelectedFile or an InvalidFileType error.
type Classifier interface {
	Classify(name, mime string, content []byte) (*domain.SelectedFile, error)
}

// Listener receives every snapshot in order.
type Listener func(domain.Snapshot)

type slot struct {
	gen    uint64
	cancel context.CancelFunc
}

// Controller owns the current file and its validation and submission requests.
type Controller struct {
	api        domain.ProposalAPI
	classifier Classifier
	downloader domain.Downloader
	notifier   domain.Notifier
	logger     domain.Logger

	base     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu           sync.Mutex
	state        domain.State
	seq          uint64
	file         *domain.SelectedFile
	validation   *domain.ValidationResult
	errKind      apperrors.ErrorType
	errMsg       string
	progress     domain.ProgressState
	outcome      *domain.SubmissionOutcome
	usedFallback bool
	request      uint64
	validate     slot
	submit       slot
	pending      []domain.Snapshot

	dispatchMu sync.Mutex
	listeners  []Listener
}

// NewController builds an idle controller.
func NewController(api domain.ProposalAPI, classifier Classifier, downloader domain.Downloader, notifier domain.Notifier, logger domain.Logger) *Controller {
	base, shutdown := context.WithCancel(context.Background())
	return &Controller{
		api:        api,
		classifier: classifier,
		downloader: downloader,
		notifier:   notifier,
		logger:     logger.With("component", "workflow"),
		base:       base,
		shutdown:   shutdown,
		state:      domain.StateIdle,
	}
}

// Subscribe registers fn for all later snapshots.
func (c *Controller) Subscribe(fn Listener) {
	c.dispatchMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.dispatchMu.Unlock()
	c.flush()
}

// Current returns a copy of the controller state.
func (c *Controller) Current() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until no request goroutine is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close aborts every request and waits for the goroutines to exit.
func (c *Controller) Close() {
	c.shutdown()
	c.Wait()
}

// SelectFile makes the picked file current and starts validating it.
// Non-workbook picks never reach the network: the controller goes to Idle
// with an InvalidFileType error, which is also returned.
func (c *Controller) SelectFile(name, mime string, content []byte) error {
	file, err := c.classifier.Classify(name, mime, content)

	c.mu.Lock()
	c.cancelSlot(&c.validate)
	c.cancelSlot(&c.submit)
	c.validation = nil
	c.outcome = nil
	c.usedFallback = false
	c.progress = domain.ProgressState{}

	if err != nil {
		c.file = nil
		c.setError(err, "")
		c.enter(domain.StateIdle)
		c.mu.Unlock()
		c.flush()

		c.logger.Info("Rejected file selection", "name", name, "mime", mime)
		c.notifier.Error(errorText(err))
		return err
	}

	c.file = file
	c.clearError()
	ctx, gen := c.startSlot(&c.validate)
	req := c.beginRequest(domain.PhaseValidating)
	c.enter(domain.StateValidating)
	c.wg.Add(1)
	c.mu.Unlock()
	c.flush()

	c.logger.Info("Validating file", "name", file.Name, "size", file.Size())
	go c.runValidation(ctx, gen, req, file)
	return nil
}

func (c *Controller) runValidation(ctx context.Context, gen, req uint64, file *domain.SelectedFile) {
	defer c.wg.Done()
	res, err := c.api.ValidateExcel(ctx, file, c.progressFunc(req, domain.PhaseValidating))
	c.handleValidationResponse(gen, res, err)
}

func (c *Controller) handleValidationResponse(gen uint64, res *domain.ValidationResult, err error) {
	c.mu.Lock()
	if gen != c.validate.gen {
		c.mu.Unlock()
		c.logger.Debug("Dropping superseded validation response", "generation", gen)
		return
	}
	c.releaseSlot(&c.validate)
	c.progress = domain.ProgressState{}

	var note func()
	switch {
	case err != nil && apperrors.IsType(err, apperrors.ErrorTypeCancelled):
		c.file = nil
		c.clearError()
		c.enter(domain.StateIdle)
	case err != nil && apperrors.IsType(err, apperrors.ErrorTypeUnauthorized):
		c.setError(err, "")
		c.enter(domain.StateValidationFailed)
		msg := c.errMsg
		note = func() { c.notifier.Error(msg) }
	case err != nil || res == nil:
		c.logger.Warn("Validation request failed", "error", err)
		c.errKind = apperrors.TypeOf(err)
		if err == nil {
			c.errKind = apperrors.ErrorTypeNetwork
		}
		c.errMsg = msgUploadFailed
		c.enter(domain.StateValidationFailed)
		note = func() { c.notifier.Error(msgUploadFailed) }
	case res.Accepted:
		c.validation = res
		c.clearError()
		c.enter(domain.StateValidated)
		note = func() { c.notifier.Success(msgValidated) }
	default:
		msg := res.ErrorMessage
		if msg == "" {
			msg = msgUploadFailed
		}
		c.validation = res
		c.errKind = apperrors.ErrorTypeValidationRejected
		c.errMsg = msg
		c.enter(domain.StateValidationFailed)
		note = func() { c.notifier.Error(msg) }
	}
	c.mu.Unlock()
	c.flush()

	if note != nil {
		note()
	}
}

// Submit sends the validated file for proposal generation. It is only
// allowed from Validated.
func (c *Controller) Submit() error {
	c.mu.Lock()
	if c.state != domain.StateValidated {
		state := c.state
		c.mu.Unlock()
		return &domain.TransitionError{Op: "submit", State: state}
	}
	if c.file == nil {
		c.mu.Unlock()
		return domain.ErrNoFileSelected
	}
	file := c.file
	c.cancelSlot(&c.submit)
	ctx, gen := c.startSlot(&c.submit)
	req := c.beginRequest(domain.PhaseSubmitting)
	c.outcome = nil
	c.usedFallback = false
	c.clearError()
	c.enter(domain.StateSubmitting)
	c.wg.Add(1)
	c.mu.Unlock()
	c.flush()

	c.logger.Info("Submitting proposal", "name", file.Name)
	go c.runSubmission(ctx, gen, req, file)
	return nil
}

func (c *Controller) runSubmission(ctx context.Context, gen, req uint64, file *domain.SelectedFile) {
	defer c.wg.Done()

	outcome, err := c.api.CreateProposal(ctx, file, c.progressFunc(req, domain.PhaseSubmitting))

	c.mu.Lock()
	if gen != c.submit.gen {
		c.mu.Unlock()
		c.logger.Debug("Dropping superseded submission response", "generation", gen)
		return
	}

	if err == nil && outcome != nil && outcome.Success {
		c.releaseSlot(&c.submit)
		c.progress = domain.ProgressState{}
		c.outcome = outcome
		c.validation = nil
		c.clearError()
		c.enter(domain.StateCompleted)
		c.mu.Unlock()
		c.flush()

		c.notifier.Success(msgGenerated)
		c.download(outcome.FileURL)
		return
	}

	if err != nil && (apperrors.IsType(err, apperrors.ErrorTypeCancelled) || apperrors.IsType(err, apperrors.ErrorTypeUnauthorized)) {
		c.releaseSlot(&c.submit)
		c.progress = domain.ProgressState{}
		c.setError(err, "")
		if apperrors.IsType(err, apperrors.ErrorTypeCancelled) {
			c.errMsg = msgSubmitCanceled
		}
		c.enter(domain.StateSubmissionFailed)
		msg := c.errMsg
		c.mu.Unlock()
		c.flush()
		c.notifier.Error(msg)
		return
	}

	primary := primaryFailure(outcome, err)
	c.logger.Warn("Proposal generation failed, trying plain upload", "reason", primary)
	c.setError(err, primary)
	if err == nil {
		c.errKind = apperrors.ErrorTypeValidationRejected
	}
	c.progress = domain.ProgressState{}
	c.enter(domain.StateSubmissionFailed)
	req = c.beginRequest(domain.PhaseSubmitting)
	c.enter(domain.StateFallbackSubmitting)
	c.mu.Unlock()
	c.flush()

	payload, ferr := c.api.UploadFile(ctx, file, c.progressFunc(req, domain.PhaseSubmitting))

	c.mu.Lock()
	if gen != c.submit.gen {
		c.mu.Unlock()
		c.logger.Debug("Dropping superseded fallback response", "generation", gen)
		return
	}
	c.releaseSlot(&c.submit)
	c.progress = domain.ProgressState{}

	if ferr == nil {
		c.usedFallback = true
		c.outcome = &domain.SubmissionOutcome{Success: true, Message: msgFallbackUsed, Proposal: payload}
		c.validation = nil
		c.clearError()
		c.enter(domain.StateCompleted)
		c.mu.Unlock()
		c.flush()
		c.notifier.Warning(msgFallbackUsed)
		return
	}

	if apperrors.IsType(ferr, apperrors.ErrorTypeCancelled) || apperrors.IsType(ferr, apperrors.ErrorTypeUnauthorized) {
		c.setError(ferr, "")
		if apperrors.IsType(ferr, apperrors.ErrorTypeCancelled) {
			c.errMsg = msgSubmitCanceled
		}
		c.enter(domain.StateSubmissionFailed)
		msg := c.errMsg
		c.mu.Unlock()
		c.flush()
		c.notifier.Error(msg)
		return
	}

	combined := apperrors.NewSubmissionFailedError(
		fmt.Sprintf("proposal creation failed: %s; fallback upload failed: %s", primary, errorText(ferr)),
		ferr,
	)
	c.setError(combined, "")
	c.enter(domain.StateFatal)
	c.mu.Unlock()
	c.flush()

	c.logger.Error("Proposal submission failed", ferr, "name", file.Name)
	c.notifier.Error(combined.Message)
}

func (c *Controller) download(fileURL string) {
	if c.downloader == nil || fileURL == "" {
		return
	}
	path, err := c.downloader.Download(c.base, fileURL)
	if err != nil {
		c.logger.Error("Download failed", err, "url", fileURL)
		c.notifier.Error("the proposal was generated but could not be downloaded: " + errorText(err))
		return
	}
	c.logger.Info("Proposal downloaded", "url", fileURL, "path", path)
	c.notifier.Info("proposal saved to " + path)
}

// Cancel aborts the active request. From Validating the controller returns
// to Idle; from a submission state it ends in SubmissionFailed with a
// cancellation message. In every other state it does nothing and reports
// false.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	var note string
	switch c.state {
	case domain.StateValidating:
		c.enter(domain.StateCancelling)
		c.cancelSlot(&c.validate)
		c.progress = domain.ProgressState{}
		c.file = nil
		c.validation = nil
		c.clearError()
		c.enter(domain.StateIdle)
		note = msgValidationCanceled
	case domain.StateSubmitting, domain.StateFallbackSubmitting:
		c.enter(domain.StateCancelling)
		c.cancelSlot(&c.submit)
		c.progress = domain.ProgressState{}
		c.errKind = apperrors.ErrorTypeCancelled
		c.errMsg = msgSubmitCanceled
		c.enter(domain.StateSubmissionFailed)
		note = msgSubmitCanceled
	default:
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	c.flush()

	c.logger.Info("Request cancelled by user")
	c.notifier.Info(note)
	return true
}

// Reset drops the current file and any request, returning to a clean Idle.
// Used when the session ends.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.cancelSlot(&c.validate)
	c.cancelSlot(&c.submit)
	clean := c.state == domain.StateIdle && c.file == nil && c.errKind == ""
	c.file = nil
	c.validation = nil
	c.outcome = nil
	c.usedFallback = false
	c.progress = domain.ProgressState{}
	c.clearError()
	if !clean {
		c.enter(domain.StateIdle)
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) startSlot(s *slot) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(c.base)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// cancelSlot aborts the occupant and invalidates its eventual response.
func (c *Controller) cancelSlot(s *slot) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

func (c *Controller) releaseSlot(s *slot) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (c *Controller) beginRequest(phase domain.Phase) uint64 {
	c.request++
	c.progress = domain.ProgressState{Percent: 0, Phase: phase}
	return c.request
}

func (c *Controller) progressFunc(req uint64, phase domain.Phase) domain.ProgressFunc {
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := float64(sent) * 100 / float64(total)
		if pct > 100 {
			pct = 100
		}
		c.mu.Lock()
		if req != c.request || c.progress.Phase != phase || pct <= c.progress.Percent {
			c.mu.Unlock()
			return
		}
		c.progress.Percent = pct
		c.pending = append(c.pending, c.snapshotLocked())
		c.mu.Unlock()
		c.flush()
	}
}

func (c *Controller) setError(err error, msg string) {
	c.errKind = apperrors.TypeOf(err)
	if msg == "" {
		msg = errorText(err)
	}
	c.errMsg = msg
}

func (c *Controller) clearError() {
	c.errKind = ""
	c.errMsg = ""
}

// enter records a state entry. Callers hold mu.
func (c *Controller) enter(state domain.State) {
	c.seq++
	c.state = state
	c.pending = append(c.pending, c.snapshotLocked())
	c.logger.Debug("State entered", "state", state, "seq", c.seq)
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Seq:          c.seq,
		State:        c.state,
		Validation:   c.validation,
		ErrorKind:    string(c.errKind),
		Error:        c.errMsg,
		Progress:     c.progress,
		Busy:         c.state.Busy(),
		Outcome:      c.outcome,
		UsedFallback: c.usedFallback,
	}
	if c.file != nil {
		snap.FileName = c.file.Name
	}
	return snap
}

// flush delivers queued snapshots in order. A listener that calls back into
// the controller queues more snapshots; the goroutine already dispatching
// picks them up.
func (c *Controller) flush() {
	for {
		if !c.dispatchMu.TryLock() {
			return
		}
		for {
			c.mu.Lock()
			if len(c.pending) == 0 {
				c.mu.Unlock()
				break
			}
			snap := c.pending[0]
			c.pending = c.pending[1:]
			c.mu.Unlock()
			for _, fn := range c.listeners {
				fn(snap)
			}
		}
		c.dispatchMu.Unlock()

		c.mu.Lock()
		empty := len(c.pending) == 0
		c.mu.Unlock()
		if empty {
			return
		}
	}
}

func primaryFailure(outcome *domain.SubmissionOutcome, err error) string {
	if err != nil {
		return errorText(err)
	}
	if outcome != nil && outcome.Message != "" {
		return outcome.Message
	}
	return msgGenerationFailed
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
