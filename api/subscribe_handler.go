package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/errs"
	"github.com/burrowblog/burrow/subscriptions"
	"github.com/burrowblog/burrow/tenant"
)

type subscribeHandler struct {
	responder     Responder
	logger        zerolog.Logger
	tenants       *tenant.Resolver
	subscriptions *subscriptions.Service
}

func newSubscribeHandler(tenants *tenant.Resolver, service *subscriptions.Service) subscribeHandler {
	logger := log.With().Str("handlerName", "subscribeHandler").Logger()

	return subscribeHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		tenants:       tenants,
		subscriptions: service,
	}
}

// subscribe starts the double-opt-in flow for the blog addressed by the
// host. The hidden name field is a honeypot.
func (h subscribeHandler) subscribe() http.HandlerFunc {
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

		email := strings.TrimSpace(r.PostFormValue("email"))
		if email == "" || r.PostFormValue("name") != "" {
			h.responder.WriteError(w, errs.NewBadRequestError("something went wrong"))
			return
		}

		err = h.subscriptions.Subscribe(blog, email, time.Now())
		switch {
		case err == nil:
			h.responder.WriteText(w, http.StatusOK, "Subscribed! Check your inbox to confirm.")
		case errs.IsAlreadyExists(err):
			// Informational, not a failure.
			h.responder.WriteText(w, http.StatusOK, "You are already subscribed.")
		case errs.IsRateLimited(err):
			h.responder.WriteError(w, err)
		default:
			h.responder.WriteError(w, err)
		}
	}
}

// confirmSubscription completes the flow from the emailed link. Mail
// clients fold the plus sign into a space, so it is restored first.
func (h subscribeHandler) confirmSubscription() http.HandlerFunc {
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

		email := strings.ReplaceAll(r.URL.Query().Get("email"), " ", "+")
		token := r.URL.Query().Get("token")

		if err := h.subscriptions.Confirm(blog, email, token, time.Now()); err != nil {
			h.responder.WriteText(w, http.StatusBadRequest, "Confirmation failed: please try subscribing again.")
			return
		}
		h.responder.WriteText(w, http.StatusOK, "Your subscription to "+blog.Title+" is confirmed.")
	}
}
