package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/burrowblog/burrow/content"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/models"
	"github.com/burrowblog/burrow/subscriptions"
)

type dashboardHandler struct {
	responder      Responder
	logger         zerolog.Logger
	blogRepo       *database.BlogRepo
	postRepo       *database.PostRepo
	userRepo       *database.UserRepo
	subscriberRepo *database.SubscriberRepo
}

func newDashboardHandler(db database.Database) dashboardHandler {
	logger := log.With().Str("handlerName", "dashboardHandler").Logger()

	return dashboardHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		blogRepo:       db.BlogRepo(),
		postRepo:       db.PostRepo(),
		userRepo:       db.UserRepo(),
		subscriberRepo: db.SubscriberRepo(),
	}
}

var metaTagPattern = regexp.MustCompile(`^<meta\s[^<>]*>$`)

// validateMetaTag rejects anything that is not strictly a single meta tag
// or that smuggles script-capable attributes in.
func validateMetaTag(tag string) error {
	if tag == "" {
		return nil
	}
	if !metaTagPattern.MatchString(strings.TrimSpace(tag)) {
		return errs.NewInvalidFieldError("metaTag", "must be a single <meta ...> element")
	}
	lowered := strings.ToLower(tag)
	for _, banned := range []string{"javascript", "script", "onerror", "url"} {
		if strings.Contains(lowered, banned) {
			return errs.NewInvalidFieldError("metaTag", "contains a disallowed attribute")
		}
	}
	return nil
}

// ownedBlog loads the authenticated owner's blog.
func (h dashboardHandler) ownedBlog(r *http.Request) (*models.Blog, error) {
	user := ctxGetUser(r.Context())
	if user == nil {
		return nil, errs.NewUnauthorizedError("not signed in")
	}
	blog, err := h.blogRepo.FindByOwner(user.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("find blog", "blog", err)
	}
	if blog == nil {
		return nil, errs.NewNotFoundError("no blog for this account")
	}
	return blog, nil
}

// BlogSettings is the owner-editable subset of a blog. The subdomain is
// immutable once claimed and deliberately absent.
type BlogSettings struct {
	Title           *string `json:"title,omitempty"`
	Content         *string `json:"content,omitempty"`
	Domain          *string `json:"domain,omitempty"`
	MetaDescription *string `json:"metaDescription,omitempty"`
	MetaImage       *string `json:"metaImage,omitempty"`
	MetaTag         *string `json:"metaTag,omitempty"`
	RobotsTxt       *string `json:"robotsTxt,omitempty"`
	BlogPath        *string `json:"blogPath,omitempty"`
	RSSAlias        *string `json:"rssAlias,omitempty"`
	Lang            *string `json:"lang,omitempty"`
}

// updateBlog applies settings changes to the owner's blog.
func (h dashboardHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var settings BlogSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if settings.MetaTag != nil {
			if err := validateMetaTag(*settings.MetaTag); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			blog.MetaTag = *settings.MetaTag
		}
		if settings.Title != nil {
			blog.Title = *settings.Title
		}
		if settings.Content != nil {
			blog.Content = *settings.Content
		}
		if settings.Domain != nil {
			blog.Domain = strings.ToLower(strings.TrimSpace(*settings.Domain))
		}
		if settings.MetaDescription != nil {
			blog.MetaDescription = *settings.MetaDescription
		}
		if settings.MetaImage != nil {
			blog.MetaImage = *settings.MetaImage
		}
		if settings.RobotsTxt != nil {
			blog.RobotsTxt = *settings.RobotsTxt
		}
		if settings.BlogPath != nil {
			blog.BlogPath = strings.Trim(*settings.BlogPath, "/")
		}
		if settings.RSSAlias != nil {
			blog.RSSAlias = strings.Trim(*settings.RSSAlias, "/")
		}
		if settings.Lang != nil {
			blog.Lang = *settings.Lang
		}

		if err := h.blogRepo.Update(blog); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update blog", "blog", err))
			return
		}
		h.responder.WriteJSON(w, blog)
	}
}

// PostInput is the create/update payload for a post.
type PostInput struct {
	Title           string    `json:"title"`
	Slug            string    `json:"slug,omitempty"`
	Content         string    `json:"content"`
	Publish         *bool     `json:"publish,omitempty"`
	PublishedAt     time.Time `json:"publishedAt,omitempty"`
	Lang            string    `json:"lang,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
	MetaImage       string    `json:"metaImage,omitempty"`
	CanonicalURL    string    `json:"canonicalUrl,omitempty"`
	IsPage          *bool     `json:"isPage,omitempty"`
	Discoverable    *bool     `json:"discoverable,omitempty"`
}

func (in PostInput) slug() string {
	if in.Slug != "" {
		return content.Slugify(in.Slug)
	}
	return content.Slugify(in.Title)
}

// createPost creates a post on the owner's blog. The slug derives from the
// title unless an explicit one is given; a preview token is issued up
// front so unpublished drafts are shareable.
func (h dashboardHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in PostInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if in.Title == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("title"))
			return
		}
		if in.Content == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("content"))
			return
		}

		slug := in.slug()
		if existing, err := h.postRepo.FindBySlug(blog.ID, slug); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find post", "post", err))
			return
		} else if existing != nil {
			h.responder.WriteError(w, errs.NewConflictError("a post with this slug already exists"))
			return
		}

		post := &models.Post{
			BlogID:       blog.ID,
			Title:        in.Title,
			Slug:         slug,
			Content:      in.Content,
			PublishedAt:  in.PublishedAt,
			Token:        uuid.NewString(),
			Lang:         in.Lang,
			Discoverable: true,
			CreatedAt:    time.Now(),
		}
		if post.PublishedAt.IsZero() {
			post.PublishedAt = time.Now()
		}
		if in.Publish != nil {
			post.Publish = *in.Publish
		}
		if in.IsPage != nil {
			post.IsPage = *in.IsPage
		}
		if in.Discoverable != nil {
			post.Discoverable = *in.Discoverable
		}
		post.MetaDescription = in.MetaDescription
		post.MetaImage = in.MetaImage
		post.CanonicalURL = in.CanonicalURL
		if len(in.Tags) > 0 {
			encoded, err := json.Marshal(in.Tags)
			if err == nil {
				post.Tags = datatypes.JSON(encoded)
			}
		}

		if err := h.postRepo.Add(post); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create post", "post", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

// updatePost edits a post. When the slug changes the old slug is kept as
// the alias so existing links keep redirecting.
func (h dashboardHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		postID, err := uuid.Parse(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid post id"))
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find post", "post", err))
			return
		}
		if post == nil || post.BlogID != blog.ID {
			h.responder.WriteNotFound(w)
			return
		}

		var in PostInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if in.Title != "" {
			post.Title = in.Title
		}
		if in.Content != "" {
			post.Content = in.Content
		}
		if newSlug := in.slug(); newSlug != "" && newSlug != post.Slug {
			post.Alias = post.Slug
			post.Slug = newSlug
		}
		if in.Publish != nil {
			post.Publish = *in.Publish
		}
		if !in.PublishedAt.IsZero() {
			post.PublishedAt = in.PublishedAt
		}
		if in.IsPage != nil {
			post.IsPage = *in.IsPage
		}
		if in.Discoverable != nil {
			post.Discoverable = *in.Discoverable
		}
		if in.Lang != "" {
			post.Lang = in.Lang
		}
		if in.MetaDescription != "" {
			post.MetaDescription = in.MetaDescription
		}
		if in.MetaImage != "" {
			post.MetaImage = in.MetaImage
		}
		if in.CanonicalURL != "" {
			post.CanonicalURL = in.CanonicalURL
		}
		if len(in.Tags) > 0 {
			if encoded, err := json.Marshal(in.Tags); err == nil {
				post.Tags = datatypes.JSON(encoded)
			}
		}

		if err := h.postRepo.Update(post); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update post", "post", err))
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// deletePost removes one of the owner's posts.
func (h dashboardHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		postID, err := uuid.Parse(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid post id"))
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find post", "post", err))
			return
		}
		if post == nil || post.BlogID != blog.ID {
			h.responder.WriteNotFound(w)
			return
		}

		if err := h.postRepo.Delete(post.ID); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete post", "post", err))
			return
		}
		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "post deleted successfully",
		})
	}
}

// subscribers lists the blog's subscribers; ?export=csv or ?export=txt
// streams a download instead.
func (h dashboardHandler) subscribers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		list, err := h.subscriberRepo.FindByBlog(blog.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find subscribers", "subscriber", err))
			return
		}

		switch r.URL.Query().Get("export") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="subscribers.csv"`)
			if err := subscriptions.WriteCSV(w, list); err != nil {
				h.logger.Error().Err(err).Msg("writing csv export")
			}
		case "txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="emails.txt"`)
			if err := subscriptions.WriteText(w, list); err != nil {
				h.logger.Error().Err(err).Msg("writing text export")
			}
		default:
			h.responder.WriteJSON(w, map[string]any{
				"subscribers": list,
				"total":       len(list),
			})
		}
	}
}

// removeSubscriber unsubscribes one address from the blog's list.
func (h dashboardHandler) removeSubscriber() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := h.ownedBlog(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}

		if err := h.subscriberRepo.Delete(blog.ID, email); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete subscriber", "subscriber", err))
			return
		}
		h.responder.WriteJSON(w, map[string]string{"status": "success"})
	}
}

// ModerationAction is a staff request against a post or its blog.
type ModerationAction struct {
	PostID uuid.UUID `json:"postId"`
	Action string    `json:"action"`
}

// moderate applies staff moderation: hiding, pinning, or deprioritising a
// post, and hiding a blog or blocking its owner outright.
func (h dashboardHandler) moderate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		if user == nil || !user.IsStaff {
			h.responder.WriteError(w, errs.NewForbiddenError("staff only"))
			return
		}

		var action ModerationAction
		if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		post, err := h.postRepo.FindByID(action.PostID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find post", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteNotFound(w)
			return
		}

		switch action.Action {
		case "hide-post":
			post.Hidden = true
			err = h.postRepo.Update(post)
		case "pin-post":
			post.Pinned = !post.Pinned
			err = h.postRepo.Update(post)
		case "deprioritise-post":
			post.Deprioritised = true
			err = h.postRepo.Update(post)
		case "hide-blog":
			post.Blog.Hidden = true
			err = h.blogRepo.Update(&post.Blog)
		case "deprioritise-blog":
			post.Blog.Deprioritised = true
			err = h.blogRepo.Update(&post.Blog)
		case "block-blog":
			err = h.userRepo.Deactivate(post.Blog.UserID)
		default:
			h.responder.WriteError(w, errs.NewInvalidFieldError("action", "unknown moderation action"))
			return
		}
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("apply moderation", "post", err))
			return
		}

		h.logger.Info().
			Str("action", action.Action).
			Str("postID", action.PostID.String()).
			Str("staff", user.Email).
			Msg("moderation action applied")
		h.responder.WriteJSON(w, map[string]string{"status": "success"})
	}
}
