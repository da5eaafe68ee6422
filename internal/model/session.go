package model

type SessionState int

const (
	SessionUnknown SessionState = iota
	SessionAnonymous
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the resolved auth state of one visitor. The zero value is the
// unresolved (Unknown) session.
type Session struct {
	State SessionState
	Token string
	User  Identity
}

func AnonymousSession() Session {
	return Session{State: SessionAnonymous}
}

func (s Session) IsResolved() bool {
	return s.State != SessionUnknown
}

func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated
}

func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.Role.IsAdmin()
}

// SessionView is the JSON shape of the session exposed to client scripts.
type SessionView struct {
	State     string `json:"state"`
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
}

func (s Session) View() SessionView {
	view := SessionView{State: s.State.String(), IsAdmin: s.IsAdmin()}
	if s.IsAuthenticated() {
		view.ID = s.User.ID
		view.Email = s.User.Email
		view.FirstName = s.User.FirstName
		view.LastName = s.User.LastName
		view.Role = s.User.Role
	}
	return view
}
