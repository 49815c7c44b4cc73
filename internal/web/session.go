package web

import (
	"context"
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/RiteshKrChauhan/BrainSpill/internal/auth"
	"github.com/RiteshKrChauhan/BrainSpill/internal/store"
)

const (
	sessionUserKey  = "authUser"
	authTokenCookie = "BrainSpillAuthToken"
)

// SessionUser is the point-in-time snapshot of a user serialized into the
// session at login. It is not refreshed from the store on later requests, so
// any handler that mutates the user's own record must re-put the snapshot or
// the session shows stale data for the rest of its lifetime. Out-of-band
// mutations (another session, an admin path) stay invisible until next login.
type SessionUser struct {
	ID       string
	Email    string
	Username string // empty until profile completion
}

func init() {
	gob.Register(SessionUser{})
}

func snapshotOf(user *store.User) SessionUser {
	out := SessionUser{ID: user.ID, Email: user.Email}
	if user.HasUsername() {
		out.Username = *user.Username
	}
	return out
}

// Sessions wraps the scs session manager with the login/logout/refresh
// operations the handlers need. Alongside the server-side session a signed
// auth-token cookie is set; LoadUser falls back to it when the session store
// has no record for the request.
type Sessions struct {
	Manager *scs.SessionManager
	Tokens  *auth.TokenIssuer
	Users   store.UserStore
	Logger  *slog.Logger
}

func NewSessions(tokens *auth.TokenIssuer, users store.UserStore, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	mgr := scs.New()
	mgr.Lifetime = 24 * time.Hour
	mgr.Cookie.HttpOnly = true
	return &Sessions{Manager: mgr, Tokens: tokens, Users: users, Logger: logger}
}

// Login serializes the user into the session and sets the auth-token cookie.
// The session token is renewed against fixation.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *store.User) {
	if err := s.Manager.RenewToken(r.Context()); err != nil {
		s.Logger.Warn("session token renew failed", "error", err)
	}
	s.Manager.Put(r.Context(), sessionUserKey, snapshotOf(user))

	tokenString, err := s.Tokens.Mint(user.ID)
	if err != nil {
		s.Logger.Warn("auth token mint failed", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(s.Manager.Lifetime),
		MaxAge:   int(s.Manager.Lifetime / time.Second),
		HttpOnly: true,
	})
}

// Logout destroys the session and clears the auth-token cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Destroy(r.Context()); err != nil {
		s.Logger.Warn("session destroy failed", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    authTokenCookie,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Now(),
	})
}

// Refresh re-puts the snapshot after the user mutated their own record.
func (s *Sessions) Refresh(r *http.Request, snapshot SessionUser) {
	s.Manager.Put(r.Context(), sessionUserKey, snapshot)
}

type sessionUserCtxKey struct{}

// LoadUser resolves the request identity and makes it available via
// UserFrom. The session snapshot wins; failing that, a valid auth-token
// cookie re-establishes the session from the store.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if snapshot, ok := s.Manager.Get(r.Context(), sessionUserKey).(SessionUser); ok {
			next.ServeHTTP(w, requestWithUser(r, &snapshot))
			return
		}

		if user := s.userFromToken(r); user != nil {
			snapshot := snapshotOf(user)
			s.Manager.Put(r.Context(), sessionUserKey, snapshot)
			next.ServeHTTP(w, requestWithUser(r, &snapshot))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Sessions) userFromToken(r *http.Request) *store.User {
	cookie, err := r.Cookie(authTokenCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	userID, err := s.Tokens.Verify(cookie.Value)
	if err != nil {
		s.Logger.Warn("auth token rejected", "error", err)
		return nil
	}
	user, err := s.Users.GetByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func requestWithUser(r *http.Request, user *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionUserCtxKey{}, user))
}

// UserFrom returns the identity attached to the request, or nil for
// anonymous requests.
func UserFrom(ctx context.Context) *SessionUser {
	user, _ := ctx.Value(sessionUserCtxKey{}).(*SessionUser)
	return user
}
