package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

const adminCookieName = "admin_session"

func playerFromRequest(r *http.Request, sessions *Sessions) (Session, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return Session{}, errNoSession
	}
	sess, ok := sessions.FromToken(token)
	if !ok {
		return Session{}, errNoSession
	}
	return sess, nil
}

func adminAuthMiddleware(admin *AdminSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(adminCookieName)
			if err != nil || cookie.Value == "" || !admin.Valid(cookie.Value) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
