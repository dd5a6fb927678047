package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

type validateResponse struct {
	Success bool                `json:"success"`
	Preview []domain.PreviewRow `json:"preview"`
	Error   *serverError        `json:"error"`
}

type createResponse struct {
	Success  bool            `json:"success"`
	FileURL  string          `json:"file_url"`
	Error    *serverError    `json:"error"`
	Proposal json.RawMessage `json:"proposal"`
}

func (c *Client) postFile(ctx context.Context, path string, file *domain.SelectedFile, progress domain.ProgressFunc) (*response, error) {
	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, apperrors.NewInternalError("encode upload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, newProgressReader(body, progress))
	if err != nil {
		return nil, apperrors.NewInternalError("build request", err)
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	return c.do(req, true)
}

// ValidateExcel asks the service to check the workbook against its rules.
//
// A server-declared rejection is not an error: it comes back as an
// unaccepted result carrying the server's message. Errors are reserved for
// transport failures, cancellation, 401 and unreadable responses.
func (c *Client) ValidateExcel(ctx context.Context, file *domain.SelectedFile, progress domain.ProgressFunc) (*domain.ValidationResult, error) {
	resp, err := c.postFile(ctx, pathValidate, file, progress)
	if err != nil {
		return nil, err
	}

	var payload validateResponse
	decodeErr := json.Unmarshal(resp.body, &payload)

	if !resp.ok() {
		if decodeErr == nil {
			if msg := payload.Error.text(); msg != "" {
				return &domain.ValidationResult{Accepted: false, ErrorMessage: msg}, nil
			}
		}
		return nil, apperrors.NewNetworkError(msgUploadFailed, statusError(pathValidate, resp))
	}
	if decodeErr != nil {
		return nil, apperrors.NewNetworkError(msgUploadFailed, decodeErr)
	}

	if !payload.Success {
		msg := payload.Error.text()
		if msg == "" {
			msg = msgUploadFailed
		}
		return &domain.ValidationResult{Accepted: false, ErrorMessage: msg}, nil
	}
	return &domain.ValidationResult{Accepted: true, PreviewRows: payload.Preview}, nil
}

// CreateProposal submits the workbook for document generation.
// A response without success=true and a file_url is reported as an
// unsuccessful outcome.
func (c *Client) CreateProposal(ctx context.Context, file *domain.SelectedFile, progress domain.ProgressFunc) (*domain.SubmissionOutcome, error) {
	resp, err := c.postFile(ctx, pathCreate, file, progress)
	if err != nil {
		return nil, err
	}

	var payload createResponse
	decodeErr := json.Unmarshal(resp.body, &payload)
	if !resp.ok() {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = "document generation failed"
		}
		return nil, apperrors.NewNetworkError(msg, statusError(pathCreate, resp))
	}
	if decodeErr != nil {
		return nil, apperrors.NewNetworkError("document generation failed", decodeErr)
	}

	if !payload.Success || strings.TrimSpace(payload.FileURL) == "" {
		msg := payload.Error.text()
		if msg == "" {
			msg = "document generation failed"
		}
		return &domain.SubmissionOutcome{Success: false, Message: msg}, nil
	}
	return &domain.SubmissionOutcome{
		Success:  true,
		FileURL:  payload.FileURL,
		Proposal: payload.Proposal,
	}, nil
}

// UploadFile is the plain upload used when generation fails.
// The payload is opaque; only the status code decides success.
func (c *Client) UploadFile(ctx context.Context, file *domain.SelectedFile, progress domain.ProgressFunc) (json.RawMessage, error) {
	resp, err := c.postFile(ctx, pathUpload, file, progress)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = msgUploadFailed
		}
		return nil, apperrors.NewNetworkError(msg, statusError(pathUpload, resp))
	}
	if len(resp.body) == 0 || !json.Valid(resp.body) {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(resp.body), nil
}
