package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bgpiesa-backend/internal/domains/admin/model"
	"bgpiesa-backend/internal/shared/validators"
	"bgpiesa-backend/pkg/jwt"
	"bgpiesa-backend/pkg/logger"
)

type ServiceInterface interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
}

type adminService struct {
	password string
	tokens   *jwt.Manager
}

// NewAdminService checks logins against password, which is either plain text
// or a bcrypt hash ($2a$/$2b$/$2y$ prefix).
func NewAdminService(password string, tokens *jwt.Manager) ServiceInterface {
	return &adminService{password: password, tokens: tokens}
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (s *adminService) verify(candidate string) bool {
	if isBcryptHash(s.password) {
		return bcrypt.CompareHashAndPassword([]byte(s.password), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(candidate)) == 1
}

func (s *adminService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}

	if !s.verify(req.Password) {
		logger.Warn("admin login rejected", nil)
		return nil, model.ErrInvalidPassword
	}

	token, _, err := s.tokens.GenerateAccessToken(model.Subject)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{AccessToken: token, TokenType: model.TokenTypeBearer}, nil
}
