package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireToken guards next with the configured API token. With no token set
// every request passes; otherwise the request must carry
// "Authorization: Bearer <token>".
func (s *apiServer) requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	want := []byte(token)
	return func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="subsyncarr"`)
			s.writeError(w, http.StatusUnauthorized, "Missing or invalid API token")
			return
		}
		next(w, r)
	}
}
