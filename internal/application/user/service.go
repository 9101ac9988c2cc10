package user

import (
	"context"
	"errors"
	"strings"

	"scrapmarket-backend/internal/models"
	"scrapmarket-backend/internal/pkg/constants"
	"scrapmarket-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("User not found")
	ErrInvalidUsername     = errors.New("Username must be 3-64 letters, digits, dots, underscores or hyphens")
	ErrInvalidEmail        = errors.New("Invalid email format")
	ErrInvalidPassword     = errors.New("Invalid password format")
	ErrInvalidUserType     = errors.New("User type must be one of: user, collector")
	ErrEmailRegistered     = errors.New("Email already registered")
	ErrUsernameRegistered  = errors.New("Username already registered")
	ErrMissingUserID       = errors.New("Missing user ID")
	ErrInvalidUserIDFormat = errors.New("Invalid user ID format (must be a valid UUID)")
)

// Service holds DB for user operations.
type Service struct {
	DB *gorm.DB
}

// CreateUserInput is the registration form.
type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// CreateUser registers a seller ("user") or a collector. Returns the created model (caller sanitizes password_hash).
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if !validation.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	userType := strings.TrimSpace(in.UserType)
	if userType == "" {
		userType = constants.UserTypeSeller
	}
	if !constants.IsValidUserType(userType) {
		return nil, ErrInvalidUserType
	}

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailRegistered
	}
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		UserType:     userType,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Str("user_type", u.UserType).Msg("user registered")
	return u, nil
}

// ViewUser returns user by ID.
func (s *Service) ViewUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserIDFormat
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// MakeAdmin flags the account with the given email as an administrator.
// Sessions store is_admin, so callers should follow up with
// middleware.DestroyUserSessions.
func (s *Service) MakeAdmin(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrInvalidEmail
	}
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("is_admin", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("user promoted to admin")
	return &u, nil
}
