package middleware

import (
	"net/http"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/store"
)

const sessionCookieName = "flourish_session"

// RequireAuth validates the session cookie and populates AuthContext.
// Unauthenticated requests get a JSON 401.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			u, err := userStore.GetByID(sess.UserID)
			if err != nil || u == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				Email:     u.Email,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}
