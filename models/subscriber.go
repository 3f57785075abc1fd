package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscriber ties an email address to a blog. Rows are only created after
// the address confirms the subscription link.
type Subscriber struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlogID       uuid.UUID `json:"blogId" db:"blog_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscribers_blog_email"`
	EmailAddress string    `json:"emailAddress" db:"email_address" gorm:"type:text;not null;uniqueIndex:idx_subscribers_blog_email"`
	SubscribedAt time.Time `json:"subscribedAt" db:"subscribed_at" gorm:"not null;index"`

	Blog Blog `json:"-" gorm:"foreignKey:BlogID;references:ID"`
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now()
	}
	return nil
}
