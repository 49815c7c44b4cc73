package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UserModel is the GORM model for users.
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	Password  string    `gorm:"size:128;not null"`
	Username  *string   `gorm:"size:64;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) toUser() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.Password,
		Username:     m.Username,
	}
}

// SecretModel is the GORM model for secrets.
type SecretModel struct {
	ID         string    `gorm:"primaryKey;size:64"`
	UserID     string    `gorm:"size:64;not null;index"`
	SecretText string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (SecretModel) TableName() string {
	return "secrets"
}

// Open connects to Postgres and runs migrations. TranslateError is enabled so
// unique-constraint violations come back as gorm.ErrDuplicatedKey, which is
// the authoritative signal for email/username collisions.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &SecretModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// GormUserStore implements UserStore on top of GORM.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := &UserModel{
		ID:       user.ID,
		Email:    user.Email,
		Password: user.PasswordHash,
		Username: user.Username,
	}
	err := s.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Either index may have fired; the email one wins the tie so the
		// caller reports collisions in registration order.
		taken, checkErr := s.EmailExists(ctx, user.Email)
		if checkErr == nil && taken {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return err
}

func (s *GormUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toUser(), nil
}

func (s *GormUserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.toUser(), nil
}

func (s *GormUserStore) EnsureGoogleUser(ctx context.Context, email string) (*User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	model := &UserModel{
		ID:       uuid.NewString(),
		Email:    email,
		Password: GoogleSentinel,
	}
	createErr := s.db.WithContext(ctx).Create(model).Error
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent first login for the same email.
		return s.GetByEmail(ctx, email)
	}
	if createErr != nil {
		return nil, createErr
	}
	return model.toUser(), nil
}

func (s *GormUserStore) SetUsername(ctx context.Context, id, username string) error {
	err := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", id).
		Update("username", username).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	return err
}

func (s *GormUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (s *GormUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// GormSecretStore implements SecretStore on top of GORM.
type GormSecretStore struct {
	db *gorm.DB
}

func NewGormSecretStore(db *gorm.DB) *GormSecretStore {
	return &GormSecretStore{db: db}
}

func (s *GormSecretStore) Add(ctx context.Context, userID, secretText string) error {
	model := &SecretModel{
		ID:         uuid.NewString(),
		UserID:     userID,
		SecretText: secretText,
	}
	return s.db.WithContext(ctx).Create(model).Error
}

func (s *GormSecretStore) Random(ctx context.Context) (*FeedEntry, error) {
	var entry FeedEntry
	result := s.db.WithContext(ctx).Table("secrets").
		Select("secrets.secret_text, users.username").
		Joins("JOIN users ON users.id = secrets.user_id").
		Order("RANDOM()").
		Limit(1).
		Scan(&entry)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrSecretNotFound
	}
	return &entry, nil
}
