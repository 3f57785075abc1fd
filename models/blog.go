package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog is a tenant: a user-owned blog addressed by subdomain or custom
// domain. The subdomain is immutable once claimed; at most one active blog
// exists per subdomain and per custom domain.
type Blog struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" db:"title" gorm:"type:text;not null"`
	Subdomain string    `json:"subdomain" db:"subdomain" gorm:"type:text;not null;uniqueIndex"`
	Domain    string    `json:"domain,omitempty" db:"domain" gorm:"type:text;index"`
	Content   string    `json:"content" db:"content" gorm:"type:text"`

	MetaDescription string `json:"metaDescription,omitempty" db:"meta_description" gorm:"type:text"`
	MetaImage       string `json:"metaImage,omitempty" db:"meta_image" gorm:"type:text"`
	MetaTag         string `json:"metaTag,omitempty" db:"meta_tag" gorm:"type:text"`
	RobotsTxt       string `json:"robotsTxt,omitempty" db:"robots_txt" gorm:"type:text"`

	// Moderation flags. Reviewed gates discovery inclusion, Hidden pulls the
	// blog's posts from discovery without touching direct access.
	Reviewed      bool `json:"reviewed" db:"reviewed" gorm:"not null;default:false"`
	Hidden        bool `json:"hidden" db:"hidden" gorm:"not null;default:false"`
	Deprioritised bool `json:"deprioritised" db:"deprioritised" gorm:"not null;default:false"`

	// Custom alias paths. BlogPath replaces the default post-listing path,
	// RSSAlias replaces the default feed path.
	BlogPath string `json:"blogPath,omitempty" db:"blog_path" gorm:"type:text"`
	RSSAlias string `json:"rssAlias,omitempty" db:"rss_alias" gorm:"type:text"`

	Lang      string    `json:"lang,omitempty" db:"lang" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	User  User   `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:BlogID;references:ID;constraint:OnDelete:CASCADE"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
