package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"wami-backend/domain"
	"wami-backend/entities"
	"wami-backend/internal/utils"
	"wami-backend/internal/utils/mailing"
	"wami-backend/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
		Me(ctx context.Context, userID string) (*domain.UserSummary, error)
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepository.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrHashPasswordFailed
	}

	user := &entities.User{
		ID:            uuid.New(),
		Email:         email,
		Password:      string(hashedPassword),
		DisplayName:   strings.TrimSpace(req.DisplayName),
		Coins:         domain.StartingCoins,
		VineyardLevel: 1,
		LastHarvestAt: time.Now(),
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	go func() {
		body := fmt.Sprintf("<p>Welcome to Wami, %s! Scan your first wine label to start earning coins.</p>", user.DisplayName)
		if err := mailing.SendMail(user.Email, "Welcome to Wami", body); err != nil {
			log.Printf("failed to send welcome email: %v", err)
		}
	}()

	token := s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser)

	return &domain.AuthResponse{
		Token: token,
		User:  summarize(user),
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCredentialsInvalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser)

	return &domain.AuthResponse{
		Token: token,
		User:  summarize(user),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*domain.UserSummary, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	summary := summarize(user)
	return &summary, nil
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": user.ID.String(),
	}, 30*time.Minute)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf("<p>Click <a href=%q>here</a> to reset your Wami password. The link expires in 30 minutes.</p>", resetLink)
	return mailing.SendMail(user.Email, "Reset your Wami password", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.ErrResetTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrHashPasswordFailed
	}

	return s.userRepository.UpdatePassword(ctx, userID, string(hashedPassword))
}

func summarize(user *entities.User) domain.UserSummary {
	return domain.UserSummary{
		ID:            user.ID.String(),
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Coins:         user.Coins,
		TotalBottles:  user.TotalBottles,
		VineyardLevel: user.VineyardLevel,
	}
}
