// Package store defines the persistence layer for BrainSpill: users who can
// authenticate locally or via Google, and the anonymous secrets they submit.
//
// Two implementations are provided. GormStore backs onto Postgres and is the
// one the server runs with; its unique indexes on email and username are the
// authority for uniqueness (application-level pre-checks are best-effort and
// race-prone). MemStore keeps everything in process memory and exists for
// tests and local tinkering.
package store

import (
	"context"
	"errors"
)

// GoogleSentinel is the password value stored for accounts created through
// Google OAuth. bcrypt hashes always begin with "$2", so this value can never
// verify against any user-supplied password and such accounts are rejected by
// local login without a special code path.
const GoogleSentinel = "google"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrSecretNotFound = errors.New("no secrets stored")
)

// User is a single account. Username stays nil until the user completes
// their profile; local registrations set it immediately, Google-origin
// accounts pick one afterwards.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Username     *string
}

// HasUsername reports whether the profile has been completed.
func (u *User) HasUsername() bool {
	return u.Username != nil && *u.Username != ""
}

// Secret is one anonymous confession. Secrets are append-only: they are never
// edited or deleted, and a user may submit any number of them.
type Secret struct {
	ID         string
	UserID     string
	SecretText string
}

// FeedEntry is one secret joined with its author's username, as shown on the
// home feed.
type FeedEntry struct {
	SecretText string
	Username   string
}

// UserStore manages user accounts.
type UserStore interface {
	// Create inserts a new user. Duplicate email or username surfaces as
	// ErrEmailTaken / ErrUsernameTaken.
	Create(ctx context.Context, user *User) error

	// GetByEmail returns the user with the given email or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the user with the given id or ErrUserNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// EnsureGoogleUser returns the user with the given email, creating one
	// with the Google sentinel password and no username if none exists.
	// Calling it twice with the same email returns the same user.
	EnsureGoogleUser(ctx context.Context, email string) (*User, error)

	// SetUsername sets the username for a user. A conflicting username
	// surfaces as ErrUsernameTaken and leaves the row unchanged.
	SetUsername(ctx context.Context, id, username string) error

	// EmailExists reports whether any user has the given email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UsernameExists reports whether any user has the given username.
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// SecretStore manages submitted secrets.
type SecretStore interface {
	// Add inserts a new secret for the given user.
	Add(ctx context.Context, userID, secretText string) error

	// Random returns one uniformly random secret with its author's
	// username, or ErrSecretNotFound when no secrets exist. Selection is
	// re-rolled on every call with no fairness or recency guarantee.
	Random(ctx context.Context) (*FeedEntry, error)
}
