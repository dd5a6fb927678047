package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FileKind is the spreadsheet flavour of a selected file.
type FileKind string

const (
	FileKindXLSX FileKind = "xlsx"
	FileKindXLS  FileKind = "xls"
)

const (
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypeXLS  = "application/vnd.ms-excel"
)

// SelectedFile is the user's current pick. Replaced wholesale, never mutated.
type SelectedFile struct {
	Name    string
	Kind    FileKind
	MIME    string
	Content []byte
}

// Size returns the file size in bytes
func (f *SelectedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Content))
}

// Cell is one column of a preview row.
type Cell struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// PreviewRow keeps the column order the server sent.
type PreviewRow []Cell

// UnmarshalJSON accepts either an object (column -> value) or a plain array.
func (r *PreviewRow) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var values []any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return err
		}
		row := make(PreviewRow, 0, len(values))
		for i, v := range values {
			row = append(row, Cell{Column: strconv.Itoa(i + 1), Value: v})
		}
		*r = row
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if _, err := dec.Token(); err != nil {
			return err
		}
		row := PreviewRow{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("preview row: unexpected key %v", tok)
			}
			var value any
			if err := dec.Decode(&value); err != nil {
				return err
			}
			row = append(row, Cell{Column: key, Value: value})
		}
		*r = row
		return nil
	default:
		return fmt.Errorf("preview row: unsupported json %q", string(trimmed[:1]))
	}
}

// MarshalJSON writes the row back as an ordered object.
func (r PreviewRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ValidationResult is the server's verdict on the current file.
type ValidationResult struct {
	Accepted     bool         `json:"accepted"`
	PreviewRows  []PreviewRow `json:"preview_rows,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// SubmissionOutcome is produced once per submission attempt.
type SubmissionOutcome struct {
	Success  bool            `json:"success"`
	FileURL  string          `json:"file_url,omitempty"`
	Message  string          `json:"message,omitempty"`
	Proposal json.RawMessage `json:"proposal,omitempty"`
}

// Phase is the kind of request a progress value belongs to.
type Phase string

const (
	PhaseNone       Phase = ""
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
)

// ProgressState is overwritten on every tick and discarded when the request ends.
type ProgressState struct {
	Percent float64 `json:"percent"`
	Phase   Phase   `json:"phase,omitempty"`
}

// State is a controller state.
type State string

const (
	StateIdle               State = "idle"
	StateValidating         State = "validating"
	StateValidated          State = "validated"
	StateValidationFailed   State = "validation_failed"
	StateSubmitting         State = "submitting"
	StateSubmissionFailed   State = "submission_failed"
	StateFallbackSubmitting State = "fallback_submitting"
	StateCompleted          State = "completed"
	StateFatal              State = "fatal"
	StateCancelling         State = "cancelling"
)

// Busy reports whether a request is outstanding in this state.
func (s State) Busy() bool {
	switch s {
	case StateValidating, StateSubmitting, StateFallbackSubmitting, StateCancelling:
		return true
	}
	return false
}

// Terminal reports whether the state ends a workflow step.
func (s State) Terminal() bool {
	switch s {
	case StateValidated, StateValidationFailed, StateCompleted, StateFatal:
		return true
	}
	return false
}

// Snapshot is the view-facing copy of controller state.
// Seq increases on every state entry.
type Snapshot struct {
	Seq          uint64             `json:"seq"`
	State        State              `json:"state"`
	FileName     string             `json:"file_name,omitempty"`
	Validation   *ValidationResult  `json:"validation,omitempty"`
	ErrorKind    string             `json:"error_kind,omitempty"`
	Error        string             `json:"error,omitempty"`
	Progress     ProgressState      `json:"progress"`
	Busy         bool               `json:"busy"`
	Outcome      *SubmissionOutcome `json:"outcome,omitempty"`
	UsedFallback bool               `json:"used_fallback,omitempty"`
}

// ProposalSummary is one entry of the proposals list.
type ProposalSummary struct {
	ID               int64      `json:"id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	Status           string     `json:"status,omitempty"`
	FilePath         string     `json:"file_path,omitempty"`
	FileSize         int64      `json:"file_size,omitempty"`
	ProcessingTime   float64    `json:"processing_time,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// ProposalPage is a page of the proposals list.
type ProposalPage struct {
	Items       []ProposalSummary `json:"items"`
	Total       int               `json:"total"`
	Pages       int               `json:"pages"`
	CurrentPage int               `json:"current_page"`
}
