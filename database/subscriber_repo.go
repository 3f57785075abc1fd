package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/burrowblog/burrow/models"
)

type SubscriberRepo struct {
	db *gorm.DB
}

func NewSubscriberRepo(db *gorm.DB) *SubscriberRepo {
	return &SubscriberRepo{db}
}

// GetOrCreate inserts a subscriber for (blogID, email) if absent and reports
// whether a row was created. Same conditional-insert shape as upvotes:
// duplicates are a benign no-op, never an error.
func (r *SubscriberRepo) GetOrCreate(blogID uuid.UUID, email string) (bool, error) {
	subscriber := models.Subscriber{BlogID: blogID, EmailAddress: email}
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blog_id"}, {Name: "email_address"}},
			DoNothing: true,
		}).
		Create(&subscriber)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the address is already subscribed to the blog.
func (r *SubscriberRepo) Exists(blogID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Subscriber{}).
		Where("blog_id = ? AND email_address = ?", blogID, email).
		Count(&count).Error
	return count > 0, err
}

// CountSince counts subscriptions across all blogs newer than the cutoff.
// Feeds the rolling-window signup burst check.
func (r *SubscriberRepo) CountSince(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscriber{}).
		Where("subscribed_at > ?", cutoff).
		Count(&count).Error
	return count, err
}

// FindByBlog returns the blog's subscribers, oldest first.
func (r *SubscriberRepo) FindByBlog(blogID uuid.UUID) ([]*models.Subscriber, error) {
	var subscribers []*models.Subscriber
	err := r.db.
		Where("blog_id = ?", blogID).
		Order("subscribed_at ASC").
		Find(&subscribers).Error
	return subscribers, err
}

// Delete removes a subscriber by blog and address.
func (r *SubscriberRepo) Delete(blogID uuid.UUID, email string) error {
	return r.db.
		Where("blog_id = ? AND email_address = ?", blogID, email).
		Delete(&models.Subscriber{}).Error
}
