package api

import (
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/content"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/discover"
	"github.com/burrowblog/burrow/engagement"
	"github.com/burrowblog/burrow/feeds"
	"github.com/burrowblog/burrow/signup"
	"github.com/burrowblog/burrow/subscriptions"
	"github.com/burrowblog/burrow/tenant"
)

// initializeHandlers wires the domain services and returns all handlers
// organized in a routeHandlers struct
func initializeHandlers(db database.Database, gormDB *gorm.DB, c map[string]string) *routeHandlers {
	tenants := tenant.NewResolver(db.BlogRepo(), c)
	contents := content.NewResolver(db.PostRepo())

	builder := discover.NewBuilder(gormDB)
	feedCache := discover.NewCache(builder, discover.DefaultTTL)
	feedGenerator := feeds.NewGenerator(db.PostRepo(), feedCache, c)

	recorder := engagement.NewRecorder(db.UpvoteRepo(), db.PostRepo())
	mailer := subscriptions.NewMailer(c)
	subscriptionService := subscriptions.NewService(db.SubscriberRepo(), mailer, c)

	spamChecker := signup.NewSpamChecker(c)
	signupService := signup.NewService(db.UserRepo(), db.BlogRepo(), spamChecker)
	sessions := signup.NewSessionManager(c)

	visitorSecret := config.GetString(c, "VISITOR_HASH_SECRET", "")

	return &routeHandlers{
		blogHandler:      newBlogHandler(tenants, contents, db, feedGenerator, visitorSecret, c),
		discoverHandler:  newDiscoverHandler(builder, feedCache, feedGenerator, config.GetString(c, "PLATFORM_APEX", "burrow.blog")),
		upvoteHandler:    newUpvoteHandler(db.PostRepo(), recorder, visitorSecret),
		subscribeHandler: newSubscribeHandler(tenants, subscriptionService),
		accountHandler:   newAccountHandler(signupService, sessions),
		dashboardHandler: newDashboardHandler(db),
		sessions:         sessions,
	}
}
