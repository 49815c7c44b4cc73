// Package web wires the HTTP surface of BrainSpill: session handling, the
// profile-completion gate and the handful of page and form handlers.
package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/RiteshKrChauhan/BrainSpill/internal/auth"
	"github.com/RiteshKrChauhan/BrainSpill/internal/store"
)

// Options collects the dependencies for a Server. Everything is passed in
// explicitly so tests can swap in in-memory stores.
type Options struct {
	Users    store.UserStore
	Secrets  store.SecretStore
	Sessions *Sessions
	Local    *auth.Local
	Logger   *slog.Logger

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

type Server struct {
	router   *mux.Router
	users    store.UserStore
	secrets  store.SecretStore
	sessions *Sessions
	local    *auth.Local
	google   *auth.Google
	logger   *slog.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:   mux.NewRouter(),
		users:    opts.Users,
		secrets:  opts.Secrets,
		sessions: opts.Sessions,
		local:    opts.Local,
		logger:   logger,
	}
	s.google = auth.NewGoogle(
		opts.GoogleClientID,
		opts.GoogleClientSecret,
		opts.GoogleCallbackURL,
		"/login?error="+url.QueryEscape(auth.MsgLoginFailed),
		s.handleGoogleUser,
		logger,
	)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
	r.HandleFunc("/complete-profile", s.handleCompleteProfileForm).Methods(http.MethodGet)
	r.HandleFunc("/complete-profile", s.handleCompleteProfile).Methods(http.MethodPost)
	r.HandleFunc("/submit", requireCompleteProfile(s.handleSubmitForm)).Methods(http.MethodGet)
	r.HandleFunc("/submit", requireUser(s.handleSubmit)).Methods(http.MethodPost)
	r.HandleFunc("/random", requireUser(s.handleRandom)).Methods(http.MethodGet)
	r.HandleFunc("/auth/google", s.google.HandleRedirect).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/callback", s.google.HandleCallback).Methods(http.MethodGet)
}

// Handler returns the full middleware chain: session load/commit, identity
// resolution, then routing.
func (s *Server) Handler() http.Handler {
	return s.sessions.Manager.LoadAndSave(s.sessions.LoadUser(s.router))
}
