package remote

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

// ListProposals returns one page of the user's generated proposals.
func (c *Client) ListProposals(ctx context.Context, page, perPage int) (*domain.ProposalPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathProposals+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("build request", err)
	}
	resp, err := c.do(req, true)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = "could not load proposals"
		}
		return nil, apperrors.NewNetworkError(msg, statusError(pathProposals, resp))
	}

	var out domain.ProposalPage
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, apperrors.NewNetworkError("could not load proposals", err)
	}
	if out.CurrentPage == 0 {
		out.CurrentPage = page
	}
	return &out, nil
}

// Fetch downloads fileURL into dst and returns the server-side file name.
// Relative URLs are resolved against the service base URL; the bearer token
// is only sent to the service's own host.
func (c *Client) Fetch(ctx context.Context, fileURL string, dst io.Writer) (string, error) {
	target, sameHost, err := c.resolve(fileURL)
	if err != nil {
		return "", apperrors.NewNotFoundError("invalid file url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", apperrors.NewInternalError("build request", err)
	}
	resp, err := c.do(req, sameHost)
	if err != nil {
		return "", err
	}
	switch {
	case resp.status == http.StatusNotFound:
		return "", apperrors.NewNotFoundError("file not found")
	case !resp.ok():
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = "download failed"
		}
		return "", apperrors.NewNetworkError(msg, statusError(req.URL.Path, resp))
	}

	if _, err := dst.Write(resp.body); err != nil {
		return "", apperrors.NewInternalError("write download", err)
	}
	return fileName(resp.header, req.URL.Path), nil
}

func (c *Client) resolve(fileURL string) (string, bool, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", false, err
	}
	u, err := url.Parse(strings.TrimSpace(fileURL))
	if err != nil || (u.Path == "" && u.Host == "") {
		return "", false, apperrors.NewNotFoundError("invalid file url")
	}
	if u.IsAbs() {
		return u.String(), u.Host == base.Host, nil
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	out := c.baseURL + p
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out, true, nil
}

func fileName(h http.Header, urlPath string) string {
	if cd := h.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	name := path.Base(urlPath)
	if name == "" || name == "." || name == "/" {
		return "proposal"
	}
	return name
}
