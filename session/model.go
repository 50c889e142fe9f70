package session

// Status is the activity state of a session. The only legal transition is
// StatusEnabled -> StatusDisabled.
type Status uint8

const (
	// StatusEnabled marks a live session whose tokens authorize requests.
	StatusEnabled Status = iota
	// StatusDisabled marks a terminated session. Tokens bound to it are
	// rejected even when their signature still verifies.
	StatusDisabled
)

// Session is one authenticated device/login instance of an identity.
type Session struct {
	SessionID  string
	IdentityID string
	Client     string
	CreatedAt  int64
	Status     Status
}

// Enabled reports whether the session still authorizes requests.
func (s *Session) Enabled() bool {
	return s != nil && s.Status == StatusEnabled
}
