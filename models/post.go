package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post belongs to exactly one blog. The slug is unique only within its blog
// and is looked up case-insensitively; Alias is a legacy identifier that
// permanently redirects to the current slug.
type Post struct {
	ID     uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlogID uuid.UUID `json:"blogId" db:"blog_id" gorm:"type:uuid;not null;index:idx_posts_blog_slug"`
	Title  string    `json:"title" db:"title" gorm:"type:text;not null"`
	Slug   string    `json:"slug" db:"slug" gorm:"type:text;not null;index:idx_posts_blog_slug"`
	Alias  string    `json:"alias,omitempty" db:"alias" gorm:"type:text"`

	Content string `json:"content" db:"content" gorm:"type:text;not null"`

	// Publish + PublishedAt together decide public visibility; an
	// unpublished post stays reachable through its preview Token.
	Publish     bool      `json:"publish" db:"publish" gorm:"not null;default:false"`
	PublishedAt time.Time `json:"publishedAt" db:"published_at" gorm:"not null;index"`
	Token       string    `json:"-" db:"token" gorm:"type:text"`

	// Hidden only blocks discovery-feed inclusion, never direct access.
	Hidden        bool `json:"hidden" db:"hidden" gorm:"not null;default:false"`
	Pinned        bool `json:"pinned" db:"pinned" gorm:"not null;default:false"`
	Deprioritised bool `json:"deprioritised" db:"deprioritised" gorm:"not null;default:false"`
	Discoverable  bool `json:"discoverable" db:"discoverable" gorm:"not null;default:true"`
	IsPage        bool `json:"isPage" db:"is_page" gorm:"not null;default:false"`

	Score int            `json:"score" db:"score" gorm:"not null;default:0;index"`
	Tags  datatypes.JSON `json:"tags,omitempty" db:"tags" gorm:"type:json"`
	Lang  string         `json:"lang,omitempty" db:"lang" gorm:"type:text"`

	MetaDescription string `json:"metaDescription,omitempty" db:"meta_description" gorm:"type:text"`
	MetaImage       string `json:"metaImage,omitempty" db:"meta_image" gorm:"type:text"`
	CanonicalURL    string `json:"canonicalUrl,omitempty" db:"canonical_url" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Blog    Blog     `json:"-" gorm:"foreignKey:BlogID;references:ID"`
	Upvotes []Upvote `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
