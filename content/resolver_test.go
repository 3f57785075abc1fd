package content

import (
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

func createTestBlog(t *testing.T, db *gorm.DB) *models.Blog {
	user := &models.User{
		Email:        "owner@example.com",
		PasswordHash: "hashedpassword",
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error)

	blog := &models.Blog{
		UserID:    user.ID,
		Title:     "Test Blog",
		Subdomain: "testblog",
	}
	require.NoError(t, db.Create(blog).Error)
	return blog
}

func createTestPost(t *testing.T, db *gorm.DB, blog *models.Blog, slug, alias string) *models.Post {
	post := &models.Post{
		BlogID:      blog.ID,
		Title:       "Test Post",
		Slug:        slug,
		Alias:       alias,
		Content:     "Some body text long enough to matter.",
		Publish:     true,
		PublishedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestResolveSlug(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	post := createTestPost(t, db, blog, "my-first-post", "")
	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(blog, "my-first-post")

	require.NoError(t, err)
	assert.Equal(t, KindPost, result.Kind)
	require.NotNil(t, result.Post)
	assert.Equal(t, post.ID, result.Post.ID)
}

func TestResolveSlugNormalizesSegment(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	post := createTestPost(t, db, blog, "my-first-post", "")
	resolver := NewResolver(database.NewPostRepo(db))

	// The incoming segment is slugified before lookup, so a differently
	// cased or spaced form still resolves.
	result, err := resolver.Resolve(blog, "My First Post")

	require.NoError(t, err)
	assert.Equal(t, KindPost, result.Kind)
	assert.Equal(t, post.ID, result.Post.ID)
}

func TestResolveAliasRedirects(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	createTestPost(t, db, blog, "new-slug", "old-slug")
	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(blog, "old-slug")

	require.NoError(t, err)
	assert.Equal(t, KindRedirect, result.Kind)
	assert.Equal(t, "new-slug", result.RedirectSlug)
}

func TestResolveSlugShadowsAlias(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	live := createTestPost(t, db, blog, "shared-name", "")
	createTestPost(t, db, blog, "other-post", "shared-name")
	resolver := NewResolver(database.NewPostRepo(db))

	// When one post's slug equals another post's alias, the live slug wins
	// and no redirect happens.
	result, err := resolver.Resolve(blog, "shared-name")

	require.NoError(t, err)
	assert.Equal(t, KindPost, result.Kind)
	assert.Equal(t, live.ID, result.Post.ID)
}

func TestResolveFeedAlias(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	blog.RSSAlias = "rss"
	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(blog, "rss")

	require.NoError(t, err)
	assert.Equal(t, KindFeed, result.Kind)
}

func TestResolveListingPaths(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(blog, "blog")
	require.NoError(t, err)
	assert.Equal(t, KindListing, result.Kind)

	blog.BlogPath = "writing"
	result, err = resolver.Resolve(blog, "writing")
	require.NoError(t, err)
	assert.Equal(t, KindListing, result.Kind)
}

func TestResolveNotFound(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(blog, "no-such-post")

	require.NoError(t, err)
	assert.Equal(t, KindNotFound, result.Kind)
}

func TestResolveScopedToBlog(t *testing.T) {
	db := setupTestDB(t)
	blog := createTestBlog(t, db)
	createTestPost(t, db, blog, "my-first-post", "")

	otherUser := &models.User{Email: "other@example.com", PasswordHash: "x", Active: true}
	require.NoError(t, db.Create(otherUser).Error)
	otherBlog := &models.Blog{UserID: otherUser.ID, Title: "Other", Subdomain: "other"}
	require.NoError(t, db.Create(otherBlog).Error)

	resolver := NewResolver(database.NewPostRepo(db))

	result, err := resolver.Resolve(otherBlog, "my-first-post")

	require.NoError(t, err)
	assert.Equal(t, KindNotFound, result.Kind)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello, World!"))
	assert.Equal(t, "cafe-creme", Slugify("Café Crème"))
	assert.Equal(t, "a-b-c", Slugify("a   b   c"))
}
