package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/tapforge/clicker-server/internal/api/apierr"
)

// Admin creates middleware that gates a route on the X-Admin-Key header.
// keyHash is a bcrypt hash of the shared admin key; an empty hash disables
// the admin surface entirely.
func Admin(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			key := r.Header.Get("X-Admin-Key")
			if key == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
