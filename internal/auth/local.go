package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/RiteshKrChauhan/BrainSpill/internal/store"
)

// User-facing failure messages, echoed into redirect query strings.
const (
	MsgUserNotFound    = "No account found with this email. Please register first."
	MsgInvalidPassword = "Incorrect password. Please try again."
	MsgLoginFailed     = "Login failed. Please try again."
	MsgEmailExists     = "Email already exists. Please login instead."
	MsgUsernameTaken   = "This username is already taken. Please choose a different one."
	MsgRegisterFailed  = "Registration failed. Please try again."
)

// Local validates email/password credentials and registers new accounts
// against the user store.
type Local struct {
	Users  store.UserStore
	Logger *slog.Logger
}

func NewLocal(users store.UserStore, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{Users: users, Logger: logger}
}

// Authenticate looks the user up by email and compares the password against
// the stored bcrypt hash. Read-only; each failure reason is distinguishable.
// Google-origin accounts store a sentinel that no bcrypt comparison can
// match, so they fall out on the invalid-password path.
func (a *Local) Authenticate(ctx context.Context, email, password string) (*store.User, *Error) {
	user, err := a.Users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, NewError(CodeUserNotFound, MsgUserNotFound, "email")
	}
	if err != nil {
		a.Logger.Error("login lookup failed", "error", err)
		return nil, NewError(CodeAuthFailed, MsgLoginFailed, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewError(CodeInvalidPassword, MsgInvalidPassword, "password")
	}
	return user, nil
}

// Register creates a new local account with email, password and username all
// set, so local registrations never pass through the incomplete-profile
// state. Email is checked before username so a fully-colliding submission
// reports the email error first. The existence checks are a best-effort fast
// path; the store's unique constraints are the authority and a constraint
// violation maps to the same taken errors.
func (a *Local) Register(ctx context.Context, email, password, username string) (*store.User, *Error) {
	if taken, err := a.Users.EmailExists(ctx, email); err != nil {
		a.Logger.Error("email pre-check failed", "error", err)
		return nil, NewError(CodeStorageFailed, MsgRegisterFailed, "")
	} else if taken {
		return nil, NewError(CodeEmailExists, MsgEmailExists, "email")
	}

	if taken, err := a.Users.UsernameExists(ctx, username); err != nil {
		a.Logger.Error("username pre-check failed", "error", err)
		return nil, NewError(CodeStorageFailed, MsgRegisterFailed, "")
	} else if taken {
		return nil, NewError(CodeUsernameTaken, MsgUsernameTaken, "username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error("password hashing failed", "error", err)
		return nil, NewError(CodeStorageFailed, MsgRegisterFailed, "")
	}

	user := &store.User{
		Email:        email,
		PasswordHash: string(hash),
		Username:     &username,
	}
	switch err := a.Users.Create(ctx, user); {
	case errors.Is(err, store.ErrEmailTaken):
		return nil, NewError(CodeEmailExists, MsgEmailExists, "email")
	case errors.Is(err, store.ErrUsernameTaken):
		return nil, NewError(CodeUsernameTaken, MsgUsernameTaken, "username")
	case err != nil:
		a.Logger.Error("user insert failed", "error", err)
		return nil, NewError(CodeStorageFailed, MsgRegisterFailed, "")
	}

	a.Logger.Info("registered local user", "user_id", user.ID, "username", username)
	return user, nil
}
