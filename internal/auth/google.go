package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// HandleUserFunc is called after a successful OAuth exchange with the
// canonical user record's email. The handler owns session setup and the
// final redirect.
type HandleUserFunc func(email string, w http.ResponseWriter, r *http.Request)

const oauthStateCookie = "oauthstate"

// Google runs the OAuth authorization-code flow against Google. A random
// state value is kept in a short-lived cookie and checked on callback.
type Google struct {
	HandleUser HandleUserFunc
	FailureURL string
	Logger     *slog.Logger
	config     oauth2.Config
}

func NewGoogle(clientID, clientSecret, callbackURL, failureURL string, handleUser HandleUserFunc, logger *slog.Logger) *Google {
	if logger == nil {
		logger = slog.Default()
	}
	return &Google{
		HandleUser: handleUser,
		FailureURL: failureURL,
		Logger:     logger,
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// HandleRedirect sends the user to Google's consent page.
func (g *Google) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	state := generateStateCookie(w)
	http.Redirect(w, r, g.config.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback completes the code flow: verifies the state cookie,
// exchanges the code, fetches the Google profile and hands the email to
// HandleUser. Provider-side failures and bad states all collapse into one
// generic failure redirect.
func (g *Google) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, _ := r.Cookie(oauthStateCookie)
	if stateCookie == nil || r.FormValue("state") != stateCookie.Value {
		g.Logger.Warn("oauth state mismatch")
		g.fail(w, r)
		return
	}
	clearStateCookie(w)

	token, err := g.config.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		g.Logger.Error("oauth code exchange failed", "error", err)
		g.fail(w, r)
		return
	}

	email, err := g.fetchEmail(r.Context(), token)
	if err != nil || email == "" {
		g.Logger.Error("fetching google profile failed", "error", err)
		g.fail(w, r)
		return
	}

	g.HandleUser(email, w, r)
}

// fetchEmail retrieves the userinfo profile for the exchanged token.
func (g *Google) fetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, token)))
	if err != nil {
		return "", err
	}
	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return "", err
	}
	return info.Email, nil
}

func (g *Google) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, g.FailureURL, http.StatusFound)
}

func generateStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		MaxAge:   600,
		HttpOnly: true,
	})
	return state
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Now(),
	})
}
