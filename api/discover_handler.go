package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/discover"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/feeds"
	"github.com/burrowblog/burrow/models"
)

type discoverHandler struct {
	responder     Responder
	logger        zerolog.Logger
	builder       *discover.Builder
	cache         *discover.Cache
	feedGenerator *feeds.Generator
	apex          string
}

func newDiscoverHandler(builder *discover.Builder, cache *discover.Cache, feedGenerator *feeds.Generator, apex string) discoverHandler {
	logger := log.With().Str("handlerName", "discoverHandler").Logger()

	return discoverHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		builder:       builder,
		cache:         cache,
		feedGenerator: feedGenerator,
		apex:          apex,
	}
}

// DiscoverPage is the payload for one discovery feed page.
type DiscoverPage struct {
	Posts        []DiscoverEntry `json:"posts"`
	Page         int             `json:"page"`
	PreviousPage int             `json:"previousPage"`
	NextPage     int             `json:"nextPage"`
	Sort         string          `json:"sort"`
	Lang         string          `json:"lang,omitempty"`
}

// DiscoverEntry is one feed row with its blog attribution.
type DiscoverEntry struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	BlogTitle     string    `json:"blogTitle"`
	BlogSubdomain string    `json:"blogSubdomain"`
	Score         int       `json:"score"`
	Pinned        bool      `json:"pinned"`
	PublishedAt   time.Time `json:"publishedAt"`
}

// feedRequest reads exactly the recognized parameters: page, newest, and
// the lang cookie (or query override). Anything else is ignored.
func feedRequest(r *http.Request) discover.FeedRequest {
	req := discover.FeedRequest{Sort: discover.SortTrending}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			req.Page = page
		}
	}
	if r.URL.Query().Get("newest") != "" {
		req.Sort = discover.SortNewest
	}

	if lang := r.URL.Query().Get("lang"); lang != "" {
		req.Locale = lang
	} else if cookie, err := r.Cookie("lang"); err == nil {
		req.Locale = cookie.Value
	}

	return req.Normalize()
}

// discover serves the cross-tenant discovery feed; ?query= switches to
// search over the same eligibility filter.
func (h discoverHandler) discover() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		if term := r.URL.Query().Get("query"); term != "" {
			posts, err := h.builder.Search(term, now)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("search posts", "post", err))
				return
			}
			h.responder.WriteJSON(w, map[string]any{
				"posts":  h.entries(posts),
				"query":  term,
				"status": "ok",
			})
			return
		}

		req := feedRequest(r)
		posts, err := h.cache.Build(req, now)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("build discovery feed", "post", err))
			return
		}

		h.responder.WriteJSON(w, DiscoverPage{
			Posts:        h.entries(posts),
			Page:         req.Page,
			PreviousPage: req.Page - 1,
			NextPage:     req.Page + 1,
			Sort:         string(req.Sort),
			Lang:         req.Locale,
		})
	}
}

// syndicationFeed serves the discovery feed as RSS/Atom using the exact
// same builder as the interactive page.
func (h discoverHandler) syndicationFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := feedRequest(r)
		// Syndication always serves the first page.
		req.Page = 0

		feed, err := h.feedGenerator.DiscoveryFeed(req, time.Now())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("build discovery feed", "post", err))
			return
		}
		if err := feeds.Write(w, feed, r.URL.Query().Get("type")); err != nil {
			h.logger.Error().Err(err).Msg("encoding discovery feed")
		}
	}
}

func (h discoverHandler) entries(posts []*models.Post) []DiscoverEntry {
	entries := make([]DiscoverEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, DiscoverEntry{
			ID:            post.ID.String(),
			Title:         post.Title,
			Slug:          post.Slug,
			URL:           fmt.Sprintf("https://%s.%s/%s/", post.Blog.Subdomain, h.apex, post.Slug),
			BlogTitle:     post.Blog.Title,
			BlogSubdomain: post.Blog.Subdomain,
			Score:         post.Score,
			Pinned:        post.Pinned,
			PublishedAt:   post.PublishedAt,
		})
	}
	return entries
}
