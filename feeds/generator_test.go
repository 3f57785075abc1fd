package feeds

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/discover"
	"github.com/burrowblog/burrow/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestBlog(t *testing.T, db *gorm.DB) *models.Blog {
	user := &models.User{Email: "owner@example.com", PasswordHash: "x", Active: true}
	require.NoError(t, db.Create(user).Error)
	blog := &models.Blog{
		UserID:    user.ID,
		Title:     "Test Blog",
		Subdomain: "testblog",
		Content:   "About this blog.",
	}
	require.NoError(t, db.Create(blog).Error)
	return blog
}

func createPublishedPost(t *testing.T, db *gorm.DB, blog *models.Blog, title, slug string, publishedAt time.Time) *models.Post {
	post := &models.Post{
		BlogID:      blog.ID,
		Title:       title,
		Slug:        slug,
		Content:     "# " + title + "\n\nbody",
		Publish:     true,
		PublishedAt: publishedAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func newTestGenerator(db *gorm.DB) *Generator {
	builder := discover.NewBuilder(db)
	cache := discover.NewCache(builder, time.Minute)
	return NewGenerator(database.NewPostRepo(db), cache, map[string]string{
		"PLATFORM_APEX": "burrow.blog",
	})
}

func TestBlogFeed(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	now := time.Now()
	createPublishedPost(t, db, blog, "First", "first", now.Add(-2*time.Hour))
	createPublishedPost(t, db, blog, "Second", "second", now.Add(-time.Hour))

	feed, err := newTestGenerator(db).BlogFeed(blog, now)

	require.NoError(t, err)
	assert.Equal(t, "Test Blog", feed.Title)
	assert.Equal(t, "https://testblog.burrow.blog", feed.Link.Href)
	require.Len(t, feed.Items, 2)
	// Newest first.
	assert.Equal(t, "Second", feed.Items[0].Title)
	assert.Equal(t, "https://testblog.burrow.blog/second/", feed.Items[0].Link.Href)
	// Item content is rendered HTML.
	assert.Contains(t, feed.Items[0].Content, "<h1>")
}

func TestBlogFeedExcludesDrafts(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	now := time.Now()
	createPublishedPost(t, db, blog, "Live", "live", now.Add(-time.Hour))

	draft := createPublishedPost(t, db, blog, "Draft", "draft", now.Add(-time.Hour))
	draft.Publish = false
	require.NoError(t, db.Save(draft).Error)

	createPublishedPost(t, db, blog, "Scheduled", "scheduled", now.Add(time.Hour))

	feed, err := newTestGenerator(db).BlogFeed(blog, now)

	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Live", feed.Items[0].Title)
}

func TestWriteFormats(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	now := time.Now()
	createPublishedPost(t, db, blog, "First", "first", now.Add(-time.Hour))

	feed, err := newTestGenerator(db).BlogFeed(blog, now)
	require.NoError(t, err)

	rss := httptest.NewRecorder()
	require.NoError(t, Write(rss, feed, "rss"))
	assert.Contains(t, rss.Header().Get("Content-Type"), "rss+xml")
	assert.True(t, strings.Contains(rss.Body.String(), "<rss"))

	atom := httptest.NewRecorder()
	require.NoError(t, Write(atom, feed, ""))
	assert.Contains(t, atom.Header().Get("Content-Type"), "atom+xml")
	assert.True(t, strings.Contains(atom.Body.String(), "<feed"))
}

func TestDiscoveryFeedTitles(t *testing.T) {
	db := setupTestDB(t)
	generator := newTestGenerator(db)
	now := time.Now()

	trending, err := generator.DiscoveryFeed(discover.FeedRequest{Sort: discover.SortTrending}, now)
	require.NoError(t, err)
	assert.Equal(t, "Trending posts", trending.Title)

	newest, err := generator.DiscoveryFeed(discover.FeedRequest{Sort: discover.SortNewest}, now)
	require.NoError(t, err)
	assert.Equal(t, "Newest posts", newest.Title)
}
