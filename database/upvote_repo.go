package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/burrowblog/burrow/models"
)

type UpvoteRepo struct {
	db *gorm.DB
}

func NewUpvoteRepo(db *gorm.DB) *UpvoteRepo {
	return &UpvoteRepo{db}
}

// CreateIfAbsent atomically inserts an upvote for (postID, hashID) and
// reports whether a row was created. The insert rides the composite unique
// index with ON CONFLICT DO NOTHING, so concurrent duplicates resolve at the
// storage layer: exactly one row ever exists and no caller sees an error.
func (r *UpvoteRepo) CreateIfAbsent(postID uuid.UUID, hashID string) (bool, error) {
	upvote := models.Upvote{PostID: postID, HashID: hashID}
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "hash_id"}},
			DoNothing: true,
		}).
		Create(&upvote)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the visitor has already upvoted the post.
func (r *UpvoteRepo) Exists(postID uuid.UUID, hashID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Upvote{}).
		Where("post_id = ? AND hash_id = ?", postID, hashID).
		Count(&count).Error
	return count > 0, err
}

// CountForPost counts distinct visitor identifiers, which is the post's
// recomputed score.
func (r *UpvoteRepo) CountForPost(postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Upvote{}).
		Distinct("hash_id").
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
