package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

// CreateUser stores a new user with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("store: hash password: %w", err)
	}
	user := &models.User{Username: username, Email: email, PWHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CheckPassword returns the user when username and password match.
func (s *Store) CheckPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.UserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PWHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// TokenFor returns the user's API key, creating one on first use.
func (s *Store) TokenFor(ctx context.Context, userID uint) (string, error) {
	token := models.AuthToken{UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&token).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		token.Key = newTokenKey()
		return tx.Omit(clause.Associations).Create(&token).Error
	})
	if err != nil {
		return "", translate(err)
	}
	return token.Key, nil
}

// UserByToken resolves an API key to its user.
func (s *Store) UserByToken(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var token models.AuthToken
	err := s.db.WithContext(ctx).Preload("User").Where(&models.AuthToken{Key: key}).First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token.User, nil
}

// DeleteToken revokes the user's API key, if any.
func (s *Store) DeleteToken(ctx context.Context, userID uint) error {
	return translate(s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error)
}

func newTokenKey() string {
	// 40 hex characters, the width of the key column.
	a, b := uuid.New(), uuid.New()
	return fmt.Sprintf("%x%x", a[:], b[:])[:40]
}
