package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie holds the anonymous session identifier.
const SessionCookie = "sid"

const sessionCookieMaxAge = 30 * 24 * time.Hour

type contextKey int

const sessionIDKey contextKey = iota

// SessionIDFromContext returns the session id attached by the identity middleware.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// identity attaches the caller's session id, minting a new one when the
// cookie is missing or not a UUID.
func identity(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(sessionCookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   secure,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, sid)))
		})
	}
}
