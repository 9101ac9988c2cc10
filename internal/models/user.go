package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is a registered account. UserType "user" sells scrap, "collector" buys it.
type User struct {
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username      string          `gorm:"column:username;type:varchar(64);not null;uniqueIndex" json:"username"`
	Email         string          `gorm:"column:email;type:varchar(120);not null;uniqueIndex" json:"email"`
	PasswordHash  string          `gorm:"column:password_hash;not null" json:"-"`
	UserType      string          `gorm:"column:user_type;type:varchar(20);not null;default:user" json:"user_type"`
	IsAdmin       bool            `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	TotalEarnings decimal.Decimal `gorm:"column:total_earnings;type:numeric(18,5);not null;default:0" json:"total_earnings"`
	CreatedAt     time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
