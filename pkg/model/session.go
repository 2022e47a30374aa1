package model

// Session is a point-in-time copy of the console's authentication state.
//
// User is only set once Token has been accepted by the backend, either by
// issuing it at login or by resolving it through the identity endpoint.
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
}

// HasToken reports whether a token is held, resolved or not.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// IsAuthenticated reports whether the session holds a token with a
// resolved user identity.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.IsAdmin()
}

// Email returns the resolved user's email or an empty string.
func (s Session) Email() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}
