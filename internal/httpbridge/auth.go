package httpbridge

import "net/http"

// authMiddleware enforces the "Authorization: Bearer <token>" header on
// every wrapped route. Auth is bypassed entirely when no token is
// configured, per the single-shared-bearer-token model.
func (srv *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if srv.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+srv.token {
			http.Error(w, "Invalid or missing Authorization header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
