package auth

import (
	"errors"
	"strings"

	"scrapmarket-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserFinder abstracts user lookup by email+password (for production GORM or test doubles).
type UserFinder interface {
	FindByEmailAndPassword(email, password string) (*models.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(email, password string) (*models.User, error) {
	return LoginUser(g.DB, LoginInput{Email: email, Password: password})
}

// LoginUser finds user by email and verifies password.
func LoginUser(db *gorm.DB, input LoginInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	var u models.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// ShapeFor builds the session shape for a stored user.
func ShapeFor(u *models.User) SessionUserShape {
	return SessionUserShape{
		UserID:   u.UserID.String(),
		Username: u.Username,
		Email:    u.Email,
		UserType: u.UserType,
		IsAdmin:  u.IsAdmin,
	}
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	isAdmin, _ := m["is_admin"].(bool)
	return &SessionUserShape{
		UserID:   userID,
		Username: str(m["username"]),
		Email:    str(m["email"]),
		UserType: str(m["user_type"]),
		IsAdmin:  isAdmin,
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
