package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/database"
	"github.com/burrowblog/burrow/engagement"
	"github.com/burrowblog/burrow/errs"
)

type upvoteHandler struct {
	responder     Responder
	logger        zerolog.Logger
	postRepo      *database.PostRepo
	recorder      *engagement.Recorder
	visitorSecret string
}

func newUpvoteHandler(postRepo *database.PostRepo, recorder *engagement.Recorder, visitorSecret string) upvoteHandler {
	logger := log.With().Str("handlerName", "upvoteHandler").Logger()

	return upvoteHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		postRepo:      postRepo,
		recorder:      recorder,
		visitorSecret: visitorSecret,
	}
}

// upvote records one upvote per visitor per post. The form must echo the
// post id and leave the title honeypot empty; anything else is treated as a
// bot and answered like a missing post. Duplicates are a benign no-op.
func (h upvoteHandler) upvote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postIDStr := chi.URLParam(r, "postID")
		postID, err := uuid.Parse(postIDStr)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid post id"))
			return
		}

		if r.PostFormValue("uid") != postIDStr || r.PostFormValue("title") != "" {
			h.responder.WriteNotFound(w)
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find post", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteNotFound(w)
			return
		}

		hashID := engagement.VisitorID(r, h.visitorSecret, time.Now())
		created, err := h.recorder.Record(post.ID, hashID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("record upvote", "upvote", err))
			return
		}
		if !created {
			h.logger.Debug().Str("postID", postIDStr).Msg("duplicate upvote")
		}

		h.responder.WriteText(w, http.StatusOK, fmt.Sprintf("Upvoted %s", post.Title))
	}
}
