package web

import "net/http"

// requireCompleteProfile gates authenticated pages: anonymous requests go to
// the login page and authenticated users without a username are forced into
// the profile-completion flow before anything else. This is what guarantees
// every rendered secret is attributable to a non-empty username.
func requireCompleteProfile(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if user.Username == "" {
			http.Redirect(w, r, "/complete-profile", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// requireUser only checks that the request is authenticated, without the
// profile gate.
func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}
