// Package subscriptions manages blog email lists: double-opt-in signup,
// burst protection, and owner exports.
package subscriptions

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/models"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9.\-+_]+@[a-z0-9.\-+_]+\.[a-z]+$`)

// Burst window: more than burstLimit platform-wide subscriptions inside
// burstWindow rejects further attempts until the window rolls over.
const (
	burstWindow = 2 * time.Minute
	burstLimit  = 10
)

type Service struct {
	subscriberRepo *database.SubscriberRepo
	mailer         *Mailer
	apex           string
	logger         zerolog.Logger
}

func NewService(subscriberRepo *database.SubscriberRepo, mailer *Mailer, c map[string]string) *Service {
	return &Service{
		subscriberRepo: subscriberRepo,
		mailer:         mailer,
		apex:           config.GetString(c, "PLATFORM_APEX", "burrow.blog"),
		logger:         log.With().Str("component", "subscriptions").Logger(),
	}
}

// Subscribe validates the address and sends the confirmation email. The
// subscriber row is only created once the address confirms. A duplicate is
// a Conflict the handler surfaces as informational text, not a failure.
func (s *Service) Subscribe(blog *models.Blog, email string, now time.Time) error {
	if !emailPattern.MatchString(email) {
		return errs.NewInvalidFieldError("email", "not a valid email address")
	}

	recent, err := s.subscriberRepo.CountSince(now.Add(-burstWindow))
	if err != nil {
		return errs.NewDatabaseError("count recent subscriptions", "subscriber", err)
	}
	if recent > burstLimit {
		return errs.NewRateLimitedError("too many recent subscriptions")
	}

	exists, err := s.subscriberRepo.Exists(blog.ID, email)
	if err != nil {
		return errs.NewDatabaseError("find subscriber", "subscriber", err)
	}
	if exists {
		return errs.NewAlreadyExists("subscriber")
	}

	// Fire-and-forget; a lost mail just means the visitor retries.
	go s.sendConfirmation(blog, email, now)
	return nil
}

// Confirm checks the emailed token and creates the subscriber. Get-or-create
// keeps repeat clicks on the confirmation link harmless.
func (s *Service) Confirm(blog *models.Blog, email, token string, now time.Time) error {
	if token == "" || token != ConfirmationToken(email, blog.Subdomain, now) {
		return errs.NewBadRequestError("invalid confirmation token")
	}
	if _, err := s.subscriberRepo.GetOrCreate(blog.ID, email); err != nil {
		return errs.NewDatabaseError("create subscriber", "subscriber", err)
	}
	return nil
}

// ConfirmationToken derives the emailed token from the address, the blog's
// subdomain, and the current month, so links expire at the month boundary.
func ConfirmationToken(email, subdomain string, now time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s %s %s", email, subdomain, now.Format("January 2006"))))
	return hex.EncodeToString(sum[:])
}

func (s *Service) sendConfirmation(blog *models.Blog, email string, now time.Time) {
	token := ConfirmationToken(email, blog.Subdomain, now)
	root := fmt.Sprintf("https://%s.%s", blog.Subdomain, s.apex)
	link := fmt.Sprintf("%s/confirm-subscription/?token=%s&email=%s", root, token, email)

	htmlBody := fmt.Sprintf(
		`You signed up for email notifications from %s (%s).<br><br>Follow <a href="%s">this link</a> to confirm your subscription.`,
		blog.Title, root, link)
	textBody := fmt.Sprintf(
		"You signed up for email notifications from %s (%s).\n\nOpen %s to confirm your subscription.\n",
		blog.Title, root, link)

	subject := fmt.Sprintf("Confirm your subscription to %s", blog.Title)
	if err := s.mailer.Send(subject, htmlBody, textBody, []string{email}); err != nil {
		s.logger.Error().Err(err).Str("blog", blog.Subdomain).Msg("sending confirmation email")
	}
}
