package domain

// View identifies a client screen by its route path.
type View string

const (
	ViewLogin         View = "/login"
	ViewResetPassword View = "/reset-password"
	ViewDashboard     View = "/dashboard"
	ViewCreate        View = "/create"
	ViewPreview       View = "/preview"
	ViewProposals     View = "/proposals"
)

// ProtectedViews require a session.
var ProtectedViews = []View{ViewDashboard, ViewCreate, ViewPreview, ViewProposals}

// Navigation is a single redirect request.
type Navigation struct {
	To     View   `json:"to"`
	From   string `json:"from,omitempty"`
	Reason string `json:"reason,omitempty"`
}
