// Package content resolves a path segment within a blog to a post, an
// alias redirect, a listing, or a feed, and gates visibility of the result.
package content

import (
	"github.com/gosimple/slug"

	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/models"
)

// Kind tags the outcome of a resolution. The caller decides transport-level
// handling (render, 301, listing page, feed encoding).
type Kind int

const (
	KindNotFound Kind = iota
	KindPost
	KindRedirect
	KindListing
	KindFeed
)

type Result struct {
	Kind Kind
	Post *models.Post
	// RedirectSlug is the canonical slug to redirect to when Kind is
	// KindRedirect.
	RedirectSlug string
}

type Resolver struct {
	postRepo *database.PostRepo
}

func NewResolver(postRepo *database.PostRepo) *Resolver {
	return &Resolver{postRepo}
}

// Slugify applies the same rule used at post-creation time: lowercase,
// whitespace and punctuation collapsed to hyphens, diacritics stripped.
func Slugify(s string) string {
	return slug.Make(s)
}

// Resolve maps a path segment to content within the blog. First match wins:
// the blog's feed alias, then slug, then legacy alias, then the post-listing
// paths. Aliases only ever redirect; they must never shadow a live slug.
func (r *Resolver) Resolve(blog *models.Blog, pathSegment string) (Result, error) {
	if blog.RSSAlias != "" && pathSegment == blog.RSSAlias {
		return Result{Kind: KindFeed}, nil
	}

	post, err := r.postRepo.FindBySlug(blog.ID, Slugify(pathSegment))
	if err != nil {
		return Result{}, errs.NewDatabaseError("find post by slug", "post", err)
	}
	if post != nil {
		return Result{Kind: KindPost, Post: post}, nil
	}

	post, err = r.postRepo.FindByAlias(blog.ID, pathSegment)
	if err != nil {
		return Result{}, errs.NewDatabaseError("find post by alias", "post", err)
	}
	if post != nil {
		return Result{Kind: KindRedirect, RedirectSlug: post.Slug}, nil
	}

	if pathSegment == "blog" || (blog.BlogPath != "" && pathSegment == blog.BlogPath) {
		return Result{Kind: KindListing}, nil
	}

	return Result{Kind: KindNotFound}, nil
}
