// Package signup creates owner accounts and their blogs, gated by the
// platform's spam checks.
package signup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/burrowblog/burrow/content"
	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/models"
)

// Subdomains that can never be claimed because the platform uses them.
var protectedSubdomains = map[string]struct{}{
	"www": {}, "mail": {}, "api": {}, "admin": {}, "app": {},
	"dashboard": {}, "status": {}, "help": {}, "support": {}, "docs": {},
}

// Request carries the signup form fields plus the hidden honeypot fields a
// human never fills in.
type Request struct {
	Title     string
	Subdomain string
	Content   string
	Email     string
	Password  string

	HoneypotDate string
	HoneypotName string

	IP        string
	UserAgent string
}

type Service struct {
	userRepo *database.UserRepo
	blogRepo *database.BlogRepo
	checker  *SpamChecker
	logger   zerolog.Logger
}

func NewService(userRepo *database.UserRepo, blogRepo *database.BlogRepo, checker *SpamChecker) *Service {
	return &Service{
		userRepo: userRepo,
		blogRepo: blogRepo,
		checker:  checker,
		logger:   log.With().Str("component", "signup").Logger(),
	}
}

// Signup validates the request, runs the spam gate, and creates the account
// with its blog. The spam rejection is deliberately uninformative.
func (s *Service) Signup(ctx context.Context, req Request) (*models.User, *models.Blog, error) {
	subdomain := content.Slugify(req.Subdomain)

	if req.Title == "" || subdomain == "" || req.Content == "" {
		return nil, nil, errs.NewMissingRequiredFieldError("title")
	}
	if req.Email == "" {
		return nil, nil, errs.NewMissingRequiredFieldError("email")
	}
	if len(req.Password) < 6 {
		return nil, nil, errs.NewInvalidFieldError("password", "must be at least 6 characters")
	}

	if _, protected := protectedSubdomains[subdomain]; protected {
		return nil, nil, errs.NewConflictError("subdomain already claimed")
	}
	taken, err := s.blogRepo.SubdomainTaken(subdomain)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("check subdomain", "blog", err)
	}
	if taken {
		return nil, nil, errs.NewConflictError("subdomain already claimed")
	}

	existing, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("find user", "user", err)
	}
	if existing != nil {
		return nil, nil, errs.NewConflictError("email already registered")
	}

	if s.checker.Honeypot(req) || s.checker.Blacklisted(ctx, req.IP) {
		s.logger.Warn().Str("ip", req.IP).Str("subdomain", subdomain).Msg("signup rejected by spam gate")
		return nil, nil, errs.NewForbiddenError("signup rejected")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, errs.NewInternalErrorWithCause("hashing password", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Add(user); err != nil {
		return nil, nil, errs.NewDatabaseError("create user", "user", err)
	}

	blog := &models.Blog{
		UserID:    user.ID,
		Title:     req.Title,
		Subdomain: subdomain,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.blogRepo.Add(blog); err != nil {
		return nil, nil, errs.NewDatabaseError("create blog", "blog", err)
	}

	return user, blog, nil
}

// Login verifies credentials and returns the account. Inactive accounts
// cannot log in.
func (s *Service) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, errs.NewDatabaseError("find user", "user", err)
	}
	if user == nil || !user.Active {
		return nil, errs.NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.NewUnauthorizedError("invalid credentials")
	}
	return user, nil
}
