// Package spreadsheet decides whether a picked file is an Excel workbook and
// reads workbooks locally for previews in the terminal client.
package spreadsheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

const msgInvalidType = "please upload an Excel file (.xlsx or .xls)"

// Classifier checks selections before anything goes over the wire.
type Classifier struct {
	maxSize int64
}

// NewClassifier returns a classifier rejecting files above maxSize bytes.
// A maxSize of 0 disables the limit.
func NewClassifier(maxSize int64) *Classifier {
	return &Classifier{maxSize: maxSize}
}

// Classify returns a SelectedFile when name or mime identify an xlsx/xls
// workbook and the content does not sniff as some other known format.
func (c *Classifier) Classify(name, mime string, content []byte) (*domain.SelectedFile, error) {
	kind, ok := kindOf(name, mime)
	if !ok {
		return nil, apperrors.NewInvalidFileTypeError(msgInvalidType, fmt.Sprintf("name=%q mime=%q", name, mime))
	}
	if len(content) == 0 {
		return nil, apperrors.NewInvalidFileTypeError("the selected file is empty")
	}
	if c.maxSize > 0 && int64(len(content)) > c.maxSize {
		return nil, apperrors.NewInvalidFileTypeError(
			fmt.Sprintf("file too large, the limit is %s", humanSize(c.maxSize)),
			domain.ErrFileTooLarge.Error(),
		)
	}

	sniffed, err := filetype.Match(content)
	if err == nil && sniffed != filetype.Unknown {
		switch sniffed.Extension {
		case "xlsx":
			kind = domain.FileKindXLSX
		case "xls":
			kind = domain.FileKindXLS
		case "zip":
			// some writers produce workbooks the ooxml matcher does not recognise
		default:
			return nil, apperrors.NewInvalidFileTypeError(msgInvalidType, "content looks like "+sniffed.MIME.Value)
		}
	}

	return &domain.SelectedFile{
		Name:    filepath.Base(name),
		Kind:    kind,
		MIME:    mimeFor(kind, mime),
		Content: content,
	}, nil
}

func kindOf(name, mime string) (domain.FileKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return domain.FileKindXLSX, true
	case ".xls":
		return domain.FileKindXLS, true
	}

	m := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case m == domain.MIMETypeXLSX, strings.Contains(m, "spreadsheetml"):
		return domain.FileKindXLSX, true
	case m == domain.MIMETypeXLS, strings.Contains(m, "excel"):
		return domain.FileKindXLS, true
	}
	return "", false
}

func mimeFor(kind domain.FileKind, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if kind == domain.FileKindXLS {
		return domain.MIMETypeXLS
	}
	return domain.MIMETypeXLSX
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
