package remote

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"

	"proposal-client/internal/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeFile builds a multipart body with the workbook under field "file".
// The body is built up front so bytes-total is known for progress.
func encodeFile(file *domain.SelectedFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	contentType := file.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressReader reports how much of the body the transport has consumed.
type progressReader struct {
	r     io.Reader
	total int64
	fn    domain.ProgressFunc

	mu   sync.Mutex
	sent int64
}

func newProgressReader(body []byte, fn domain.ProgressFunc) *progressReader {
	return &progressReader{r: bytes.NewReader(body), total: int64(len(body)), fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.fn(sent, p.total)
	}
	return n, err
}
