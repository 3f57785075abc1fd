package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// setupRoutes wires every endpoint. Public routes serve whichever blog the
// Host header resolves to; /dashboard routes require a session and always
// act on the signed-in owner's blog, so they ignore the Host entirely.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Get("/", handlers.blogHandler.home())
	r.Get("/ping", handlers.blogHandler.ping())
	r.Get("/sitemap.xml", handlers.blogHandler.sitemap())
	r.Get("/robots.txt", handlers.blogHandler.robots())
	r.Get("/feed/", handlers.blogHandler.feed())
	r.Get("/blog/", handlers.blogHandler.postsList())

	r.Get("/discover/", handlers.discoverHandler.discover())
	r.Get("/discover/feed/", handlers.discoverHandler.syndicationFeed())

	r.Get("/confirm-subscription/", handlers.subscribeHandler.confirmSubscription())

	// The write endpoints get limits far below the blanket per-IP cap.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))

		r.Post("/signup", handlers.accountHandler.signupAccount())
		r.Post("/login", handlers.accountHandler.login())
		r.Post("/upvote/{postID}/", handlers.upvoteHandler.upvote())
		r.Post("/email-subscribe/", handlers.subscribeHandler.subscribe())
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(auth.authenticate)

		r.Patch("/blog/", handlers.dashboardHandler.updateBlog())
		r.Post("/posts/", handlers.dashboardHandler.createPost())
		r.Patch("/posts/{postID}/", handlers.dashboardHandler.updatePost())
		r.Delete("/posts/{postID}/", handlers.dashboardHandler.deletePost())
		r.Get("/subscribers/", handlers.dashboardHandler.subscribers())
		r.Delete("/subscribers/", handlers.dashboardHandler.removeSubscriber())
		r.Post("/moderate/", handlers.dashboardHandler.moderate())
	})

	// Everything else is a content path on the resolved blog: a post slug,
	// an alias, a listing path, or an RSS alias.
	r.Get("/{segment}/", handlers.blogHandler.resolvePath())
}
