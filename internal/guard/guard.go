// Package guard decides whether a requested view may render.
package guard

import (
	"path"
	"strings"

	"proposal-client/internal/domain"
)

// Decision is the outcome of a route check.
type Decision struct {
	Allow    bool
	Redirect domain.View
	// From is the originally requested path, kept so login can resume it.
	From string
}

// IsProtected reports whether p is, or is below, a protected view.
func IsProtected(p string) bool {
	_, ok := owningView(p)
	return ok
}

// owningView returns the protected view p is, or is below.
func owningView(p string) (domain.View, bool) {
	clean := normalize(p)
	for _, v := range domain.ProtectedViews {
		base := string(v)
		if clean == base || strings.HasPrefix(clean, base+"/") {
			return v, true
		}
	}
	return "", false
}

// Check is a pure function of session state and the requested path.
func Check(sessions domain.SessionReader, requested string) Decision {
	if !IsProtected(requested) {
		return Decision{Allow: true}
	}
	if _, ok := sessions.Current(); ok {
		return Decision{Allow: true}
	}
	return Decision{Redirect: domain.ViewLogin, From: normalize(requested)}
}

// ResumeTarget returns where to go after login: the protected view that owns
// from. Action paths below a view resume the view itself, and anything that
// is not protected resumes the dashboard.
func ResumeTarget(from string) string {
	if v, ok := owningView(from); ok && from != "" {
		return string(v)
	}
	return string(domain.ViewDashboard)
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
