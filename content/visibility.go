package content

import (
	"time"

	"github.com/burrowblog/burrow/models"
)

// Visible decides whether a resolved post may be shown to the requester.
// A published post is visible once its scheduled time has passed. An
// unpublished post is visible only through its preview token, compared by
// exact match: a padded or prefix token never passes.
//
// Callers must treat an invisible post exactly like a nonexistent one, so
// unpublished content cannot be enumerated.
func Visible(post *models.Post, suppliedToken string, now time.Time) bool {
	if post == nil {
		return false
	}
	if post.Publish {
		return !post.PublishedAt.After(now)
	}
	return post.Token != "" && suppliedToken == post.Token
}
