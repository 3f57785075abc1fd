package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/models"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// GetDB returns the underlying database connection. The discovery query
// builder composes its eligibility filter on top of it.
func (r *PostRepo) GetDB() *gorm.DB {
	return r.db
}

// FindBySlug returns the post with the exact slug within the blog, matched
// case-insensitively, or nil.
func (r *PostRepo) FindBySlug(blogID uuid.UUID, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Where("blog_id = ? AND LOWER(slug) = LOWER(?)", blogID, slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FindByAlias returns the post with the legacy alias within the blog,
// matched case-insensitively, or nil.
func (r *PostRepo) FindByAlias(blogID uuid.UUID, alias string) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Where("blog_id = ? AND alias <> '' AND LOWER(alias) = LOWER(?)", blogID, alias).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) FindByID(id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Blog").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FindPublished returns the blog's publicly visible posts, newest first.
// Pages are excluded from the reel the same way the dashboard excludes them
// from the post list.
func (r *PostRepo) FindPublished(blogID uuid.UUID, now time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.
		Where("blog_id = ? AND publish = ? AND published_at <= ? AND is_page = ?",
			blogID, true, now, false).
		Order("published_at DESC").
		Find(&posts).Error
	return posts, err
}

// Add inserts a new post into the database
func (r *PostRepo) Add(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update updates an existing post in the database
func (r *PostRepo) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete removes a post from the database by id
func (r *PostRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Post{}, "id = ?", id).Error
}

// SetScore writes a recomputed popularity score.
func (r *PostRepo) SetScore(id uuid.UUID, score int) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).Update("score", score).Error
}
