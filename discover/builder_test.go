package discover

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps every goroutine on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestBlog(t *testing.T, db *gorm.DB, subdomain string, reviewed bool) *models.Blog {
	user := &models.User{
		Email:        subdomain + "@example.com",
		PasswordHash: "hashedpassword",
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error)

	blog := &models.Blog{
		UserID:    user.ID,
		Title:     subdomain,
		Subdomain: subdomain,
		Reviewed:  reviewed,
	}
	require.NoError(t, db.Create(blog).Error)
	return blog
}

// eligibleContent is comfortably past the minimum-length filter.
var eligibleContent = strings.Repeat("Interesting writing. ", 10)

func createFeedPost(t *testing.T, db *gorm.DB, blog *models.Blog, title string, score int, publishedAt time.Time) *models.Post {
	post := &models.Post{
		BlogID:       blog.ID,
		Title:        title,
		Slug:         strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Content:      eligibleContent,
		Publish:      true,
		PublishedAt:  publishedAt,
		Discoverable: true,
		Score:        score,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func titles(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, post := range posts {
		out[i] = post.Title
	}
	return out
}

func TestBuildTrendingOrdersByScore(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db, "writer", true)
	now := time.Now()

	createFeedPost(t, db, blog, "low", 1, now.Add(-time.Hour))
	createFeedPost(t, db, blog, "high", 10, now.Add(-2*time.Hour))
	createFeedPost(t, db, blog, "mid", 5, now.Add(-time.Hour))

	posts, err := NewBuilder(db).Build(FeedRequest{Sort: SortTrending}, now)

	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid", "low"}, titles(posts))
}

func TestBuildNewestOrdersByPublishedAt(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db, "writer", true)
	now := time.Now()

	createFeedPost(t, db, blog, "oldest", 100, now.Add(-3*time.Hour))
	createFeedPost(t, db, blog, "newest", 0, now.Add(-time.Hour))
	createFeedPost(t, db, blog, "middle", 50, now.Add(-2*time.Hour))

	posts, err := NewBuilder(db).Build(FeedRequest{Sort: SortNewest}, now)

	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(posts))
}

func TestBuildEligibilityFilter(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	builder := NewBuilder(db)

	blog := createTestBlog(t, db, "writer", true)
	createFeedPost(t, db, blog, "eligible", 1, now.Add(-time.Hour))

	// Too short.
	short := createFeedPost(t, db, blog, "short", 1, now.Add(-time.Hour))
	short.Content = "tiny"
	require.NoError(t, db.Save(short).Error)

	// Hidden by moderation.
	hidden := createFeedPost(t, db, blog, "hidden", 1, now.Add(-time.Hour))
	hidden.Hidden = true
	require.NoError(t, db.Save(hidden).Error)

	// Opted out of discovery.
	optedOut := createFeedPost(t, db, blog, "opted out", 1, now.Add(-time.Hour))
	optedOut.Discoverable = false
	require.NoError(t, db.Save(optedOut).Error)

	// Scheduled in the future.
	createFeedPost(t, db, blog, "scheduled", 1, now.Add(time.Hour))

	// Draft.
	draft := createFeedPost(t, db, blog, "draft", 1, now.Add(-time.Hour))
	draft.Publish = false
	require.NoError(t, db.Save(draft).Error)

	// Unreviewed blog.
	unreviewed := createTestBlog(t, db, "unreviewed", false)
	createFeedPost(t, db, unreviewed, "unreviewed post", 1, now.Add(-time.Hour))

	posts, err := builder.Build(FeedRequest{}, now)

	require.NoError(t, err)
	assert.Equal(t, []string{"eligible"}, titles(posts))
}

func TestBuildPinnedOverlay(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db, "writer", true)
	now := time.Now()

	createFeedPost(t, db, blog, "regular", 100, now.Add(-time.Hour))
	pinned := createFeedPost(t, db, blog, "pinned", 0, now.Add(-2*time.Hour))
	pinned.Pinned = true
	require.NoError(t, db.Save(pinned).Error)

	// Pins lead page zero of trending despite the lower score, and the
	// pinned post is not repeated in the tail.
	posts, err := NewBuilder(db).Build(FeedRequest{Sort: SortTrending}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned", "regular"}, titles(posts))

	// Page one carries no pins.
	posts, err = NewBuilder(db).Build(FeedRequest{Sort: SortTrending, Page: 1}, now)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// The newest sort never carries pins; the pinned post appears only in
	// its natural position.
	posts, err = NewBuilder(db).Build(FeedRequest{Sort: SortNewest}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"regular", "pinned"}, titles(posts))
}

func TestBuildPagination(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db, "writer", true)
	now := time.Now()

	for i := 0; i < PageSize+5; i++ {
		createFeedPost(t, db, blog, fmt.Sprintf("post %02d", i), PageSize+5-i,
			now.Add(-time.Duration(i)*time.Minute))
	}

	builder := NewBuilder(db)

	page0, err := builder.Build(FeedRequest{}, now)
	require.NoError(t, err)
	assert.Len(t, page0, PageSize)

	page1, err := builder.Build(FeedRequest{Page: 1}, now)
	require.NoError(t, err)
	assert.Len(t, page1, 5)

	// No overlap between pages.
	seen := make(map[string]bool)
	for _, post := range page0 {
		seen[post.Title] = true
	}
	for _, post := range page1 {
		assert.False(t, seen[post.Title], post.Title)
	}

	// A page past the end is empty, not an error.
	page9, err := builder.Build(FeedRequest{Page: 9}, now)
	require.NoError(t, err)
	assert.Empty(t, page9)
}

func TestBuildLocaleFilter(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	blog := createTestBlog(t, db, "writer", true)
	english := createFeedPost(t, db, blog, "english", 1, now.Add(-time.Hour))
	english.Lang = "en"
	require.NoError(t, db.Save(english).Error)

	german := createFeedPost(t, db, blog, "german", 1, now.Add(-time.Hour))
	german.Lang = "de"
	require.NoError(t, db.Save(german).Error)

	// No post language: the blog's language applies. The stored value is
	// upper-case to show the match ignores case on the column side too.
	deBlog := createTestBlog(t, db, "deblog", true)
	deBlog.Lang = "DE"
	require.NoError(t, db.Save(deBlog).Error)
	createFeedPost(t, db, deBlog, "inherited german", 1, now.Add(-time.Hour))

	posts, err := NewBuilder(db).Build(FeedRequest{Locale: "de"}, now)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"german", "inherited german"}, titles(posts))

	// An upper-case locale cookie matches lower-case stored values.
	posts, err = NewBuilder(db).Build(FeedRequest{Locale: "DE"}, now)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"german", "inherited german"}, titles(posts))
}

func TestBuildNormalizeDefaults(t *testing.T) {
	req := FeedRequest{Page: -3, Sort: "bogus"}.Normalize()
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, SortTrending, req.Sort)

	req = FeedRequest{Sort: SortNewest}.Normalize()
	assert.Equal(t, SortNewest, req.Sort)
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db, "writer", true)
	now := time.Now()

	match := createFeedPost(t, db, blog, "growing tomatoes", 1, now.Add(-time.Hour))
	createFeedPost(t, db, blog, "unrelated", 1, now.Add(-time.Hour))

	posts, err := NewBuilder(db).Search("tomatoes", now)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, match.ID, posts[0].ID)

	// Empty term returns nothing rather than everything.
	posts, err = NewBuilder(db).Search("", now)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
