package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upvote records one engagement per (post, visitor) pair. HashID is the
// salted, year-bucketed visitor identifier, never a raw IP or cookie. The
// composite unique index is what makes concurrent duplicate inserts resolve
// to a single row at the storage layer.
type Upvote struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID    uuid.UUID `json:"postId" db:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_upvotes_post_visitor"`
	HashID    string    `json:"-" db:"hash_id" gorm:"type:text;not null;uniqueIndex:idx_upvotes_post_visitor"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`

	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID"`
}

func (u *Upvote) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
