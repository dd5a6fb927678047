package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"proposal-client/internal/config"
	"proposal-client/internal/domain"
	"proposal-client/internal/notify"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// WorkflowHandler exposes the proposal workflow to the UI
type WorkflowHandler struct {
	container *config.Container
}

func NewWorkflowHandler(container *config.Container) *WorkflowHandler {
	return &WorkflowHandler{container: container}
}

type dashboardResponse struct {
	Username string          `json:"username"`
	Workflow domain.Snapshot `json:"workflow"`
}

// Dashboard returns the logged-in user and the workflow state
func (h *WorkflowHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp := dashboardResponse{Workflow: h.container.Controller.Current()}
	if sess, ok := h.container.Sessions.Current(); ok {
		resp.Username = sess.Identity.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

// State returns the current workflow snapshot
func (h *WorkflowHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.container.Controller.Current())
}

// SelectFile accepts a multipart upload under "file" and starts validation
func (h *WorkflowHandler) SelectFile(w http.ResponseWriter, r *http.Request) {
	limit := h.container.Config.GetMaxFileSize()
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "a file is required in field \"file\"")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read the uploaded file")
		return
	}

	if err := h.container.Controller.SelectFile(header.Filename, header.Header.Get("Content-Type"), content); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.container.Controller.Current())
}

// Cancel aborts the running validation or submission
func (h *WorkflowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	cancelled := h.container.Controller.Cancel()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cancelled": cancelled,
		"workflow":  h.container.Controller.Current(),
	})
}

// Confirm submits the validated file for proposal generation
func (h *WorkflowHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.container.Controller.Submit(); err != nil {
		var te *domain.TransitionError
		if errors.As(err, &te) || errors.Is(err, domain.ErrNoFileSelected) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.container.Controller.Current())
}

// LeavePreview cancels a running submission, or discards the file and
// returns to the create view.
func (h *WorkflowHandler) LeavePreview(w http.ResponseWriter, r *http.Request) {
	if !h.container.Controller.Cancel() {
		h.container.Controller.Reset()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"redirect": string(domain.ViewCreate),
		"workflow": h.container.Controller.Current(),
	})
}

// ListProposals returns a page of generated proposals
func (h *WorkflowHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	result, err := h.container.Proposals.List(r.Context(), page, perPage)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DownloadProposal saves a generated proposal into the download directory
func (h *WorkflowHandler) DownloadProposal(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	path, err := h.container.Proposals.DownloadByName(r.Context(), filename)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// Navigation drains pending redirects
func (h *WorkflowHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	navs := h.container.Navigator.Drain()
	if navs == nil {
		navs = []domain.Navigation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"navigations": navs})
}

// Notifications returns toasts newer than ?after=
func (h *WorkflowHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	after, _ := strconv.ParseUint(r.URL.Query().Get("after"), 10, 64)
	items := h.container.Notifications.Since(after)
	if items == nil {
		items = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": items})
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
