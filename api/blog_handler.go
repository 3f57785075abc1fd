package api

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/content"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/engagement"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/feeds"
	"github.com/burrowblog/burrow/models"
	"github.com/burrowblog/burrow/tenant"
)

type blogHandler struct {
	responder     Responder
	logger        zerolog.Logger
	tenants       *tenant.Resolver
	contents      *content.Resolver
	postRepo      *database.PostRepo
	upvoteRepo    *database.UpvoteRepo
	feedGenerator *feeds.Generator
	visitorSecret string
	apex          string
}

func newBlogHandler(tenants *tenant.Resolver, contents *content.Resolver, db database.Database,
	feedGenerator *feeds.Generator, visitorSecret string, c map[string]string) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		tenants:       tenants,
		contents:      contents,
		postRepo:      db.PostRepo(),
		upvoteRepo:    db.UpvoteRepo(),
		feedGenerator: feedGenerator,
		visitorSecret: visitorSecret,
		apex:          config.GetString(c, "PLATFORM_APEX", "burrow.blog"),
	}
}

// BlogHome is the payload for a blog's home page.
type BlogHome struct {
	Blog            models.Blog   `json:"blog"`
	Posts           []PostSummary `json:"posts"`
	Root            string        `json:"root"`
	MetaDescription string        `json:"metaDescription"`
}

// PostSummary is a listing entry.
type PostSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags,omitempty"`
}

// PostView is the payload for a single post.
type PostView struct {
	Blog            models.Blog `json:"blog"`
	Post            models.Post `json:"post"`
	Root            string      `json:"root"`
	FullPath        string      `json:"fullPath"`
	CanonicalURL    string      `json:"canonicalUrl"`
	MetaDescription string      `json:"metaDescription"`
	MetaImage       string      `json:"metaImage,omitempty"`
	Upvoted         bool        `json:"upvoted"`
}

func (h blogHandler) root(blog *models.Blog) string {
	return fmt.Sprintf("https://%s.%s", blog.Subdomain, h.apex)
}

// home serves the blog addressed by the host, or the landing page when the
// host is the platform itself.
func (h blogHandler) home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog == nil {
			h.responder.WriteJSON(w, map[string]string{"page": "landing"})
			return
		}
		h.writeListing(w, blog, "")
	}
}

// resolvePath serves /{post-or-alias}/: a post, a permanent redirect from a
// legacy alias, the post listing, or the blog's feed.
func (h blogHandler) resolvePath() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog == nil {
			h.responder.WriteNotFound(w)
			return
		}

		segment := strings.Trim(chi.URLParam(r, "segment"), "/")
		result, err := h.contents.Resolve(blog, segment)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		switch result.Kind {
		case content.KindFeed:
			h.writeFeed(w, r, blog)
		case content.KindRedirect:
			http.Redirect(w, r, "/"+result.RedirectSlug+"/", http.StatusMovedPermanently)
		case content.KindListing:
			h.writeListing(w, blog, r.URL.Query().Get("q"))
		case content.KindPost:
			h.writePost(w, r, blog, result.Post)
		default:
			h.responder.WriteNotFound(w)
		}
	}
}

// postsList serves the blog's paginated post reel at its default path.
func (h blogHandler) postsList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog == nil {
			h.responder.WriteNotFound(w)
			return
		}
		h.writeListing(w, blog, r.URL.Query().Get("q"))
	}
}

func (h blogHandler) writePost(w http.ResponseWriter, r *http.Request, blog *models.Blog, post *models.Post) {
	// An invisible post answers exactly like a nonexistent one.
	if !content.Visible(post, r.URL.Query().Get("token"), time.Now()) {
		h.responder.WriteNotFound(w)
		return
	}

	upvoted := false
	if h.visitorSecret != "" {
		hashID := engagement.VisitorID(r, h.visitorSecret, time.Now())
		var err error
		upvoted, err = h.upvoteRepo.Exists(post.ID, hashID)
		if err != nil {
			h.logger.Error().Err(err).Msg("checking upvote state")
		}
	}

	root := h.root(blog)
	fullPath := fmt.Sprintf("%s/%s/", root, post.Slug)
	canonical := fullPath
	if strings.HasPrefix(post.CanonicalURL, "https://") {
		canonical = post.CanonicalURL
	}

	metaImage := post.MetaImage
	if metaImage == "" {
		metaImage = blog.MetaImage
	}

	h.responder.WriteJSON(w, PostView{
		Blog:            *blog,
		Post:            *post,
		Root:            root,
		FullPath:        fullPath,
		CanonicalURL:    canonical,
		MetaDescription: content.MetaDescription(post.MetaDescription, post.Content),
		MetaImage:       metaImage,
		Upvoted:         upvoted,
	})
}

func (h blogHandler) writeListing(w http.ResponseWriter, blog *models.Blog, tagFilter string) {
	posts, err := h.postRepo.FindPublished(blog.ID, time.Now())
	if err != nil {
		h.responder.WriteError(w, errs.NewDatabaseError("find posts", "post", err))
		return
	}

	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		tags := decodeTags(post)
		if tagFilter != "" && !containsTag(tags, tagFilter) {
			continue
		}
		summaries = append(summaries, PostSummary{
			ID:          post.ID.String(),
			Title:       post.Title,
			Slug:        post.Slug,
			PublishedAt: post.PublishedAt,
			Tags:        tags,
		})
	}

	h.responder.WriteJSON(w, BlogHome{
		Blog:            *blog,
		Posts:           summaries,
		Root:            h.root(blog),
		MetaDescription: content.MetaDescription(blog.MetaDescription, blog.Content),
	})
}

func (h blogHandler) writeFeed(w http.ResponseWriter, r *http.Request, blog *models.Blog) {
	feed, err := h.feedGenerator.BlogFeed(blog, time.Now())
	if err != nil {
		h.responder.WriteError(w, errs.NewDatabaseError("build feed", "post", err))
		return
	}
	if err := feeds.Write(w, feed, r.URL.Query().Get("type")); err != nil {
		h.logger.Error().Err(err).Msg("encoding feed")
	}
}

// feed serves the blog's feed at its default /feed/ path. Custom feed
// aliases go through resolvePath instead.
func (h blogHandler) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog == nil {
			h.responder.WriteNotFound(w)
			return
		}
		h.writeFeed(w, r, blog)
	}
}

// sitemap serves the blog's sitemap.xml.
func (h blogHandler) sitemap() http.HandlerFunc {
	type urlEntry struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod,omitempty"`
	}
	type urlSet struct {
		XMLName xml.Name   `xml:"urlset"`
		Xmlns   string     `xml:"xmlns,attr"`
		URLs    []urlEntry `xml:"url"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog == nil {
			h.responder.WriteNotFound(w)
			return
		}

		posts, err := h.postRepo.FindPublished(blog.ID, time.Now())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find posts", "post", err))
			return
		}

		root := h.root(blog)
		set := urlSet{
			Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
			URLs:  []urlEntry{{Loc: root + "/"}},
		}
		for _, post := range posts {
			set.URLs = append(set.URLs, urlEntry{
				Loc:     fmt.Sprintf("%s/%s/", root, post.Slug),
				LastMod: post.PublishedAt.Format("2006-01-02"),
			})
		}

		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
		encoder := xml.NewEncoder(w)
		encoder.Indent("", "  ")
		if err := encoder.Encode(set); err != nil {
			h.logger.Error().Err(err).Msg("encoding sitemap")
		}
	}
}

// robots serves the blog's robots.txt, owner-customizable.
func (h blogHandler) robots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.tenants.ResolveRequest(r)
		if err != nil && !errs.IsNotFound(err) {
			h.responder.WriteError(w, err)
			return
		}

		body := "User-agent: *\nAllow: /\n"
		if blog != nil {
			if blog.RobotsTxt != "" {
				body = blog.RobotsTxt
			}
			body += fmt.Sprintf("\nSitemap: %s/sitemap.xml\n", h.root(blog))
		}
		h.responder.WriteText(w, http.StatusOK, body)
	}
}

// ping answers domain pre-validation probes from the certificate issuer: 200
// when the queried custom domain belongs to a blog, 404 otherwise.
func (h blogHandler) ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := r.URL.Query().Get("domain")
		if domain == "" {
			h.responder.WriteNotFound(w)
			return
		}
		blog, err := h.tenants.Resolve(domain)
		if err != nil || blog == nil {
			h.logger.Info().Str("domain", domain).Msg("ping for unknown domain")
			h.responder.WriteNotFound(w)
			return
		}
		h.responder.WriteText(w, http.StatusOK, "Ping")
	}
}

func decodeTags(post *models.Post) []string {
	if len(post.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(post.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}
