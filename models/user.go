package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a blog owner account. Accounts are deactivated, never hard-deleted;
// an inactive owner takes their blog off the air everywhere.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	Active       bool      `json:"active" db:"active" gorm:"not null;default:true"`
	IsStaff      bool      `json:"isStaff" db:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"not null"`

	Blogs []Blog `json:"blogs,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
