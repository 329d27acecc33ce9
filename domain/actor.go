package domain

// Actor identifies the authenticated user a core operation runs as.
// Every operation takes one explicitly; the core never reads ambient
// session state.
type Actor struct {
	ID       string
	TenantID string
	Role     string
}

// Attributed reports whether the actor carries enough attribution for an
// event to be recorded against it.
func (a Actor) Attributed() bool {
	return a.ID != "" && a.TenantID != ""
}
