// Package services holds the application services sitting between the
// HTTP controllers and the repositories.
package services

import (
	"errors"
	"fmt"
	"strconv"

	"dukaan/app/models"
	"dukaan/app/repositories"
	"dukaan/pkg/auth"
	"dukaan/pkg/httperr"
	"dukaan/pkg/metrics"
)

// AuthService implements registration and login on top of the user
// repository and the token manager.
type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register hashes the password and creates the account. The plaintext is
// never logged or stored.
func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	return s.users.Create(name, email, hash)
}

// Login verifies the credentials and issues an access token. An unknown
// email and a wrong password both produce the same authentication error,
// so a caller cannot probe which emails are registered.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		var appErr *httperr.Error
		if errors.As(err, &appErr) {
			return "", httperr.Auth()
		}
		return "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", httperr.Auth()
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(strconv.FormatBool(user.IsAdmin)).Inc()
	return token, nil
}
