package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tfields/gatehouse/auth"
	"github.com/tfields/gatehouse/internal/util"
)

// SignIn handles POST /auth/signin.
func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeJSON[auth.Credentials](w, r, maxBodySize)
	if !ok {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	creds.Username = util.NormalizeUsername(creds.Username)

	token, user, err := a.sessions.Login(r.Context(), creds)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.audit.logFailure(AuditSignInFailure, r, "invalid credentials")
		mapError(w, err)
		return
	}
	if err != nil {
		a.logger.Error("sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSessionCookie(w, r, token, time.Now().Add(a.sessions.InactivityTimeout()))
	a.state.MarkActive(user.Username)

	a.audit.logEvent(AuditSignInSuccess, r, user.Username)
	writeJSON(w, http.StatusOK, SignInResponse{Username: user.Username, Next: creds.Next})
}

// SignOut handles POST /auth/signout.
func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	var username string
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if user, rerr := a.sessions.Resolve(r.Context(), cookie.Value); rerr == nil && user != nil {
			username = user.Username
		}
		if lerr := a.sessions.Logout(r.Context(), cookie.Value); lerr != nil && !errors.Is(lerr, auth.ErrBadSignature) {
			a.logger.Error("sign-out failed", "error", lerr)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	clearSessionCookie(w, r)
	a.audit.logEvent(AuditSignOut, r, username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// GetConfig handles GET /user/config.
func (a *API) GetConfig(w http.ResponseWriter, r *http.Request) {
	a.state.IncrementRequests()
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, UserDetails{
		Messages:    []string{"new config"},
		Username:    user.Username,
		Preferences: RandomPreferences(),
	})
}

// PutConfig handles PUT /user/config.
func (a *API) PutConfig(w http.ResponseWriter, r *http.Request) {
	a.state.IncrementRequests()
	prefs, ok := decodeJSON[Preferences](w, r, maxBodySize)
	if !ok {
		return
	}
	user := userFromContext(r.Context())
	a.logger.Debug("storing user config", "user", user)
	writeJSON(w, http.StatusOK, prefs)
}

// UpdatePassword handles PUT /user/passwd. On success every previously
// issued session for the user, this one included, dies on its next
// resolution via the auth fingerprint.
func (a *API) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	a.state.IncrementRequests()
	req, ok := decodeJSON[UpdatePasswordRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	user := userFromContext(r.Context())

	err := a.backend.ChangePassword(r.Context(), user, req.Old, req.NewPw, req.NewPwRetype)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch),
			errors.Is(err, auth.ErrInvalidCredentials),
			errors.Is(err, auth.ErrStaleCredential):
			a.audit.logEvent(AuditPasswordChangeRejected, r, user.Username,
				slog.String("reason", err.Error()))
		default:
			a.logger.Error("password change failed", "user", user, "error", err)
		}
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPasswordChanged, r, user.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /status, a diagnostic snapshot of the shared state.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	count, users := a.state.Snapshot()
	writeJSON(w, http.StatusOK, StatusResponse{
		RequestCount: count,
		ActiveUsers:  users,
	})
}
