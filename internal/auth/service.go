// Package auth implements user registration, login and token handling on
// top of the users collection.
package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/docstore"
)

// Service provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a token
// - UserID: resolve the user behind a token
type Service struct {
	docs                  docstore.Store
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewService(docs docstore.Store, secretKey string, tokenValidityDuration time.Duration) *Service {
	return &Service{
		docs:                  docs,
		jwtSecret:             []byte(secretKey),
		tokenValidityDuration: tokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password and returns
// the new user id. A taken login yields ErrLoginAlreadyExists.
func (s *Service) Register(ctx context.Context, login, password string) (string, error) {
	users := s.docs.Collection(docstore.CollectionUsers)

	existing, err := users.Query(ctx, "login", login)
	if err != nil {
		return "", common.ErrorInternal
	}
	if len(existing) > 0 {
		return "", common.ErrLoginAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", common.ErrorInternal
	}

	id, err := users.Add(ctx, docstore.Document{
		"login":        login,
		"passwordHash": string(hash),
	})
	if err != nil {
		return "", common.ErrorInternal
	}
	return id, nil
}

// Login verifies the credentials and returns a signed token. Unknown
// logins and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	users := s.docs.Collection(docstore.CollectionUsers)

	snaps, err := users.Query(ctx, "login", login)
	if err != nil {
		return "", common.ErrorInternal
	}
	if len(snaps) == 0 {
		return "", common.ErrInvalidLoginPassword
	}

	hash, _ := snaps[0].Doc["passwordHash"].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", common.ErrInvalidLoginPassword
		}
		return "", common.ErrorInternal
	}

	return GenerateToken(snaps[0].ID, s.jwtSecret, s.tokenValidityDuration)
}

// UserID resolves the user id carried by a token.
func (s *Service) UserID(token string) (string, error) {
	return GetUserIDFromToken(token, s.jwtSecret)
}
