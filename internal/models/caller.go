package models

// Caller is the authenticated identity behind an invocation.
// A nil *Caller means the invocation carried no identity.
type Caller struct {
	UID string
}

// Authenticated reports whether the caller carries a subject identifier.
func (c *Caller) Authenticated() bool {
	return c != nil && c.UID != ""
}
