package api

import (
	"math/rand/v2"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SignInResponse echoes the authenticated username and the optional
// post-login redirect hint from the request.
type SignInResponse struct {
	Username string `json:"username"`
	Next     string `json:"next,omitempty"`
}

// UpdatePasswordRequest carries a password change. The old password must
// verify and the two new values must match.
type UpdatePasswordRequest struct {
	Old         string `json:"old"`
	NewPw       string `json:"new_pw"`
	NewPwRetype string `json:"new_pw_retype"`
}

// Preferences is the demo per-user preference payload.
type Preferences struct {
	Greetings string `json:"greetings"`
	DarkMode  bool   `json:"dark_mode"`
}

// UserDetails is the protected config response.
type UserDetails struct {
	Messages    []string    `json:"messages"`
	Username    string      `json:"username"`
	Preferences Preferences `json:"preferences"`
}

// StatusResponse is a snapshot of the shared application state.
type StatusResponse struct {
	RequestCount uint64   `json:"request_count"`
	ActiveUsers  []string `json:"active_users"`
}

var greetings = []string{"hello", "ನಮಸ್ಕಾರ", "नमस्ते"}

// RandomPreferences rolls a fresh preference payload.
func RandomPreferences() Preferences {
	n := rand.IntN(len(greetings))
	return Preferences{
		Greetings: greetings[n],
		DarkMode:  n%2 == 0,
	}
}
