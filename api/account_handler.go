package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/signup"
)

type accountHandler struct {
	responder Responder
	logger    zerolog.Logger
	signup    *signup.Service
	sessions  *signup.SessionManager
}

func newAccountHandler(service *signup.Service, sessions *signup.SessionManager) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()

	return accountHandler{
		responder: NewResponder(logger),
		logger:    logger,
		signup:    service,
		sessions:  sessions,
	}
}

// SignupRequest is the signup payload. Date and Name are honeypot fields a
// real client leaves empty.
type SignupRequest struct {
	Title     string `json:"title"`
	Subdomain string `json:"subdomain"`
	Content   string `json:"content"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Date      string `json:"date,omitempty"`
	Name      string `json:"name,omitempty"`
}

// SessionResponse carries the issued session token.
type SessionResponse struct {
	Token     string `json:"token"`
	Subdomain string `json:"subdomain,omitempty"`
}

// signupAccount creates an account plus blog and signs the new owner in.
func (h accountHandler) signupAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("failed to read request body"))
			return
		}

		var req SignupRequest
		if err := json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode signup request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		user, blog, err := h.signup.Signup(r.Context(), signup.Request{
			Title:        req.Title,
			Subdomain:    req.Subdomain,
			Content:      req.Content,
			Email:        req.Email,
			Password:     req.Password,
			HoneypotDate: req.Date,
			HoneypotName: req.Name,
			IP:           clientIP(r),
			UserAgent:    r.UserAgent(),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, err := h.sessions.Issue(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issuing session", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, SessionResponse{Token: token, Subdomain: blog.Subdomain})
	}
}

// login verifies credentials and issues a session token.
func (h accountHandler) login() http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		user, err := h.signup.Login(req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, err := h.sessions.Issue(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issuing session", err))
			return
		}
		h.responder.WriteJSON(w, SessionResponse{Token: token})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := bytes.IndexByte([]byte(forwarded), ','); i >= 0 {
			return forwarded[:i]
		}
		return forwarded
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
