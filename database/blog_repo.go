package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// activeOwner restricts a blog query to blogs whose owner account is active.
func (r *BlogRepo) activeOwner() *gorm.DB {
	return r.db.
		Joins("JOIN users ON users.id = blogs.user_id").
		Where("users.active = ?", true)
}

// FindBySubdomain returns the blog claiming the subdomain, matched
// case-insensitively and restricted to active-owner blogs. Returns nil when
// no such blog exists.
func (r *BlogRepo) FindBySubdomain(subdomain string) (*models.Blog, error) {
	var blog models.Blog
	err := r.activeOwner().
		Where("LOWER(blogs.subdomain) = LOWER(?)", subdomain).
		First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

// FindByDomain returns the blog with the exact custom domain, matched
// case-insensitively and restricted to active-owner blogs. Returns nil when
// no such blog exists; the caller handles the www toggle retry.
func (r *BlogRepo) FindByDomain(domain string) (*models.Blog, error) {
	if domain == "" {
		return nil, nil
	}
	var blog models.Blog
	err := r.activeOwner().
		Where("blogs.domain <> '' AND LOWER(blogs.domain) = LOWER(?)", domain).
		First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

func (r *BlogRepo) FindByID(id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.First(&blog, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

// FindByOwner returns the owner's blog, or nil. One blog per owner.
func (r *BlogRepo) FindByOwner(userID uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.Where("user_id = ?", userID).First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

// SubdomainTaken reports whether any blog, active owner or not, has claimed
// the subdomain. Claims survive owner deactivation.
func (r *BlogRepo) SubdomainTaken(subdomain string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Blog{}).
		Where("LOWER(subdomain) = LOWER(?)", subdomain).
		Count(&count).Error
	return count > 0, err
}

// Add inserts a new blog into the database
func (r *BlogRepo) Add(blog *models.Blog) error {
	return r.db.Create(blog).Error
}

// Update updates an existing blog in the database
func (r *BlogRepo) Update(blog *models.Blog) error {
	return r.db.Save(blog).Error
}
