package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/RiteshKrChauhan/BrainSpill/internal/auth"
	"github.com/RiteshKrChauhan/BrainSpill/internal/store"
)

// Shown on the feed when nobody has submitted anything yet.
const (
	emptyFeedSecret = "No secrets shared yet. Be the first to share one!"
	emptyFeedAuthor = "Anonymous"
)

const profileUpdateFailed = "Failed to update username. Please try again."

// handleHome renders the feed for a complete profile, the login page for
// anonymous visitors, and bounces incomplete profiles into the gate.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		s.render(w, "login.html", map[string]any{})
		return
	}
	if user.Username == "" {
		http.Redirect(w, r, "/complete-profile", http.StatusFound)
		return
	}

	entry, err := s.secrets.Random(r.Context())
	switch {
	case errors.Is(err, store.ErrSecretNotFound):
		entry = &store.FeedEntry{SecretText: emptyFeedSecret, Username: emptyFeedAuthor}
	case err != nil:
		s.logger.Error("loading random secret failed", "error", err)
		entry = &store.FeedEntry{SecretText: emptyFeedSecret, Username: emptyFeedAuthor}
	}
	s.render(w, "home.html", map[string]any{
		"Secret": entry.SecretText,
		"User":   entry.Username,
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", map[string]any{
		"Error": r.URL.Query().Get("error"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/login", auth.MsgLoginFailed)
		return
	}
	user, authErr := s.local.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if authErr != nil {
		s.redirectWithError(w, r, "/login", authErr.Message)
		return
	}
	s.sessions.Login(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", map[string]any{
		"Error": r.URL.Query().Get("error"),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/register", auth.MsgRegisterFailed)
		return
	}
	user, authErr := s.local.Register(r.Context(),
		r.FormValue("email"), r.FormValue("password"), r.FormValue("username"))
	if authErr != nil {
		s.redirectWithError(w, r, "/register", authErr.Message)
		return
	}
	s.sessions.Login(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleCompleteProfileForm(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil || user.Username != "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, "complete_profile.html", map[string]any{"Email": user.Email})
}

// handleCompleteProfile sets the one-time username. On a collision the form
// re-renders with the attempted value preserved and the username stays nil.
// On success the in-session snapshot is re-synced before redirecting.
func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil || user.Username != "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, "complete_profile.html", map[string]any{
			"Email": user.Email,
			"Error": profileUpdateFailed,
		})
		return
	}
	username := r.FormValue("username")

	renderError := func(msg string) {
		s.render(w, "complete_profile.html", map[string]any{
			"Email":    user.Email,
			"Username": username,
			"Error":    msg,
		})
	}

	if taken, err := s.users.UsernameExists(r.Context(), username); err != nil {
		s.logger.Error("username pre-check failed", "error", err)
		renderError(profileUpdateFailed)
		return
	} else if taken {
		renderError(auth.MsgUsernameTaken)
		return
	}

	switch err := s.users.SetUsername(r.Context(), user.ID, username); {
	case errors.Is(err, store.ErrUsernameTaken):
		renderError(auth.MsgUsernameTaken)
		return
	case err != nil:
		s.logger.Error("username update failed", "error", err, "user_id", user.ID)
		renderError(profileUpdateFailed)
		return
	}

	s.sessions.Refresh(r, SessionUser{ID: user.ID, Email: user.Email, Username: username})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "submit.html", nil)
}

// handleSubmit inserts a new secret for the current user. It trusts that the
// caller is past the gate and does not re-check profile completeness; a
// storage failure is logged and the user is sent home with no visible error.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if err := r.ParseForm(); err == nil {
		if err := s.secrets.Add(r.Context(), user.ID, r.FormValue("secret")); err != nil {
			s.logger.Error("secret insert failed", "error", err, "user_id", user.ID)
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleGoogleUser finishes a successful OAuth exchange: the account is
// looked up or created by email, logged in, and sent to profile completion
// (which bounces straight home when a username is already set).
func (s *Server) handleGoogleUser(email string, w http.ResponseWriter, r *http.Request) {
	user, err := s.users.EnsureGoogleUser(r.Context(), email)
	if err != nil {
		s.logger.Error("google user lookup failed", "error", err)
		s.redirectWithError(w, r, "/login", auth.MsgLoginFailed)
		return
	}
	s.sessions.Login(w, r, user)
	http.Redirect(w, r, "/complete-profile", http.StatusFound)
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusFound)
}
