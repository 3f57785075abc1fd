// Package feeds encodes blog and discovery listings as RSS/Atom. The
// discovery feed reuses the discover builder unchanged, so syndication and
// the interactive feed can never disagree on eligibility or order.
package feeds

import (
	"fmt"
	"net/http"
	"time"

	gorillafeeds "github.com/gorilla/feeds"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/content"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/discover"
	"github.com/burrowblog/burrow/models"
)

type Generator struct {
	postRepo *database.PostRepo
	cache    *discover.Cache
	apex     string
}

func NewGenerator(postRepo *database.PostRepo, cache *discover.Cache, c map[string]string) *Generator {
	return &Generator{
		postRepo: postRepo,
		cache:    cache,
		apex:     config.GetString(c, "PLATFORM_APEX", "burrow.blog"),
	}
}

func (g *Generator) blogRoot(blog *models.Blog) string {
	return fmt.Sprintf("https://%s.%s", blog.Subdomain, g.apex)
}

// BlogFeed builds the feed of one blog's published posts.
func (g *Generator) BlogFeed(blog *models.Blog, now time.Time) (*gorillafeeds.Feed, error) {
	posts, err := g.postRepo.FindPublished(blog.ID, now)
	if err != nil {
		return nil, err
	}

	root := g.blogRoot(blog)
	feed := &gorillafeeds.Feed{
		Title:       blog.Title,
		Link:        &gorillafeeds.Link{Href: root},
		Description: content.MetaDescription(blog.MetaDescription, blog.Content),
		Updated:     now,
	}
	for _, post := range posts {
		feed.Items = append(feed.Items, g.item(post, root))
	}
	return feed, nil
}

// DiscoveryFeed builds the cross-tenant feed for the requested sort,
// reading through the shared discovery cache.
func (g *Generator) DiscoveryFeed(req discover.FeedRequest, now time.Time) (*gorillafeeds.Feed, error) {
	req = req.Normalize()
	posts, err := g.cache.Build(req, now)
	if err != nil {
		return nil, err
	}

	title := "Trending posts"
	link := fmt.Sprintf("https://%s/discover/", g.apex)
	if req.Sort == discover.SortNewest {
		title = "Newest posts"
		link = fmt.Sprintf("https://%s/discover/?newest=true", g.apex)
	}

	feed := &gorillafeeds.Feed{
		Title:       title,
		Link:        &gorillafeeds.Link{Href: link},
		Description: title,
		Updated:     now,
	}
	for _, post := range posts {
		feed.Items = append(feed.Items, g.item(post, g.blogRoot(&post.Blog)))
	}
	return feed, nil
}

func (g *Generator) item(post *models.Post, root string) *gorillafeeds.Item {
	url := fmt.Sprintf("%s/%s/", root, post.Slug)
	return &gorillafeeds.Item{
		Id:      url,
		Title:   post.Title,
		Link:    &gorillafeeds.Link{Href: url},
		Content: content.RenderHTML(post.Content),
		Created: post.PublishedAt,
		Updated: post.PublishedAt,
	}
}

// Write encodes the feed as RSS when format is "rss", Atom otherwise.
func Write(w http.ResponseWriter, feed *gorillafeeds.Feed, format string) error {
	if format == "rss" {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		body, err := feed.ToRss()
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(body))
		return err
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	body, err := feed.ToAtom()
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(body))
	return err
}
