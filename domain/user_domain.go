package domain

import (
	"errors"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGetUser        = "user retrieved successfully"
	MessageSuccessForgotPassword = "password reset email sent"
	MessageSuccessResetPassword  = "password reset successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetUser        = "failed to retrieve user"
	MessageFailedForgotPassword = "failed to send password reset email"
	MessageFailedResetPassword  = "failed to reset password"

	ErrEmailAlreadyExists  = errors.New("user already exists with this email")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	ErrCredentialsInvalid  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrResetTokenInvalid   = errors.New("invalid or expired reset token")
	ErrHashPasswordFailed  = errors.New("failed to hash password")
)

const (
	// New users start with enough coins to feel the economy moving.
	StartingCoins = 50
)

type (
	RegisterRequest struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=6"`
		DisplayName string `json:"display_name" validate:"required"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}

	UserSummary struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		DisplayName   string `json:"display_name"`
		Coins         int    `json:"coins"`
		TotalBottles  int    `json:"total_bottles"`
		VineyardLevel int    `json:"vineyard_level"`
	}

	AuthResponse struct {
		Token string      `json:"token"`
		User  UserSummary `json:"user"`
	}
)
