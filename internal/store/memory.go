package store

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// MemUserStore is an in-memory UserStore for tests and local development.
type MemUserStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by id
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[string]*User)}
}

func (s *MemUserStore) Create(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	if user.HasUsername() {
		for _, u := range s.users {
			if u.HasUsername() && *u.Username == *user.Username {
				return ErrUsernameTaken
			}
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemUserStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, ErrUserNotFound
}

func (s *MemUserStore) EnsureGoogleUser(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: GoogleSentinel,
	}
	s.users[user.ID] = user
	return copyUser(user), nil
}

func (s *MemUserStore) SetUsername(ctx context.Context, id, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	for _, u := range s.users {
		if u.ID != id && u.HasUsername() && *u.Username == username {
			return ErrUsernameTaken
		}
	}
	user.Username = &username
	return nil
}

func (s *MemUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.HasUsername() && *u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func copyUser(u *User) *User {
	out := *u
	if u.Username != nil {
		name := *u.Username
		out.Username = &name
	}
	return &out
}

// MemSecretStore is an in-memory SecretStore for tests and local development.
type MemSecretStore struct {
	mu      sync.RWMutex
	users   *MemUserStore
	secrets []*Secret
}

func NewMemSecretStore(users *MemUserStore) *MemSecretStore {
	return &MemSecretStore{users: users}
}

func (s *MemSecretStore) Add(ctx context.Context, userID, secretText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets = append(s.secrets, &Secret{
		ID:         uuid.NewString(),
		UserID:     userID,
		SecretText: secretText,
	})
	return nil
}

func (s *MemSecretStore) Random(ctx context.Context) (*FeedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.secrets) == 0 {
		return nil, ErrSecretNotFound
	}
	secret := s.secrets[rand.IntN(len(s.secrets))]
	author, err := s.users.GetByID(ctx, secret.UserID)
	if err != nil {
		return nil, err
	}
	entry := &FeedEntry{SecretText: secret.SecretText}
	if author.HasUsername() {
		entry.Username = *author.Username
	}
	return entry, nil
}

// Count returns the number of stored secrets. Test helper.
func (s *MemSecretStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
