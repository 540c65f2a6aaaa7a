package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bgpiesa-backend/internal/shared/apperror"
)

// Subject is the single identity admin tokens are issued for
const Subject = "admin"

const TokenTypeBearer = "bearer"

var ErrInvalidPassword = apperror.New(
	apperror.KindUnauthorized,
	"INVALID_PASSWORD",
	"Грешна парола.",
)

type LoginRequest struct {
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
