package domain

// SessionState is what gets broadcast whenever the session changes.
type SessionState struct {
	LoggedIn bool  `json:"loggedIn"`
	User     *User `json:"user,omitempty"`
}

// LoggedOut is the state published after logout or a failed token check.
func LoggedOut() SessionState {
	return SessionState{LoggedIn: false, User: nil}
}

// LoggedInAs is the state published after login or a profile change.
func LoggedInAs(user User) SessionState {
	return SessionState{LoggedIn: true, User: &user}
}
