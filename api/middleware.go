package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tfields/gatehouse/auth"
)

type contextKey int

const userKey contextKey = iota

const sessionCookieName = "gatehouse_session"

// AuthMiddleware resolves the session cookie into an authenticated user on
// the request context. Requests without a live session get a 401; expired,
// invalidated, and tampered cookies are additionally cleared.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := a.sessions.Resolve(r.Context(), cookie.Value)
		switch {
		case err == nil && user != nil:
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		case errors.Is(err, auth.ErrSessionExpired):
			a.audit.logFailure(AuditSessionExpired, r, "inactivity timeout exceeded")
		case errors.Is(err, auth.ErrSessionInvalidated):
			a.audit.logFailure(AuditSessionInvalidated, r, "auth fingerprint mismatch")
		case errors.Is(err, auth.ErrBadSignature):
			a.audit.logFailure(AuditSignInFailure, r, "tampered session cookie")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// Absent, expired, invalidated, or tampered: anonymous.
		clearSessionCookie(w, r)
		writeError(w, http.StatusUnauthorized, "authentication required")
	})
}

func userFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userKey).(*auth.User)
	return user
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// requestIsSecure reports whether the request arrived over TLS, directly
// or behind a terminating proxy. Session cookies are only marked Secure in
// that case so that non-TLS development setups still work.
func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
