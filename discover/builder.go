// Package discover builds the cross-tenant discovery feed: one eligibility
// and ordering definition shared by the interactive feed, search, and the
// syndication feed generator.
package discover

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/models"
)

// PageSize is fixed; pagination is offset-based.
const PageSize = 20

type Sort string

const (
	SortTrending Sort = "trending"
	SortNewest   Sort = "newest"
)

// FeedRequest enumerates exactly the recognized feed parameters, with
// defaults applied by Normalize. Unrecognized query fields never reach it.
type FeedRequest struct {
	Page   int
	Sort   Sort
	Locale string
}

func (req FeedRequest) Normalize() FeedRequest {
	if req.Page < 0 {
		req.Page = 0
	}
	if req.Sort != SortNewest {
		req.Sort = SortTrending
	}
	return req
}

type Builder struct {
	db *gorm.DB
}

func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db}
}

// baseQuery is the one place the discovery eligibility filter lives: the
// post is published and due, long enough to be worth surfacing, not hidden,
// explicitly discoverable, and its blog is reviewed, not hidden, and owned
// by an active account.
func (b *Builder) baseQuery(now time.Time) *gorm.DB {
	return b.db.Model(&models.Post{}).
		Select("posts.*").
		Joins("JOIN blogs ON blogs.id = posts.blog_id").
		Joins("JOIN users ON users.id = blogs.user_id").
		Where("posts.publish = ?", true).
		Where("posts.published_at <= ?", now).
		Where("LENGTH(posts.content) > ?", 100).
		Where("posts.hidden = ?", false).
		Where("posts.discoverable = ?", true).
		Where("blogs.reviewed = ?", true).
		Where("blogs.hidden = ?", false).
		Where("users.active = ?", true)
}

// Build returns one page of the discovery feed. On page zero of the
// trending sort the separately curated pinned set is prepended verbatim and
// excluded from the scored tail; the newest sort never carries pins.
func (b *Builder) Build(req FeedRequest, now time.Time) ([]*models.Post, error) {
	req = req.Normalize()

	var pinned []*models.Post
	if req.Sort == SortTrending && req.Page == 0 {
		err := b.db.Preload("Blog").
			Where("pinned = ?", true).
			Order("published_at DESC").
			Find(&pinned).Error
		if err != nil {
			return nil, err
		}
	}

	query := b.baseQuery(now)

	if len(pinned) > 0 {
		pinnedIDs := make([]uuid.UUID, len(pinned))
		for i, post := range pinned {
			pinnedIDs[i] = post.ID
		}
		query = query.Where("posts.id NOT IN ?", pinnedIDs)
	}

	if req.Locale != "" {
		// Match ignores case on both sides; the stored lang is free-form.
		pattern := "%" + strings.ToLower(req.Locale) + "%"
		query = query.Where(
			"(posts.lang <> '' AND LOWER(posts.lang) LIKE ?) OR (posts.lang = '' AND blogs.lang <> '' AND LOWER(blogs.lang) LIKE ?)",
			pattern, pattern)
	}

	switch req.Sort {
	case SortNewest:
		query = query.Order("posts.published_at DESC")
	default:
		query = query.Order("posts.score DESC, posts.published_at DESC")
	}

	var tail []*models.Post
	err := query.Preload("Blog").
		Offset(req.Page * PageSize).
		Limit(PageSize).
		Find(&tail).Error
	if err != nil {
		return nil, err
	}

	return append(pinned, tail...), nil
}

// Search runs the same eligibility filter over a title/content substring
// match, best first.
func (b *Builder) Search(term string, now time.Time) ([]*models.Post, error) {
	if term == "" {
		return nil, nil
	}
	pattern := "%" + term + "%"
	var posts []*models.Post
	err := b.baseQuery(now).
		Where("posts.title LIKE ? OR posts.content LIKE ?", pattern, pattern).
		Order("posts.score DESC, posts.published_at DESC").
		Limit(50).
		Preload("Blog").
		Find(&posts).Error
	return posts, err
}
