package engagement

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/database"
)

// Recorder is the idempotent upvote writer. Recording is an atomic
// get-or-create on (post, visitor); a duplicate is reported as already
// existing, never as an error.
type Recorder struct {
	upvoteRepo *database.UpvoteRepo
	postRepo   *database.PostRepo
	logger     zerolog.Logger
}

func NewRecorder(upvoteRepo *database.UpvoteRepo, postRepo *database.PostRepo) *Recorder {
	return &Recorder{
		upvoteRepo: upvoteRepo,
		postRepo:   postRepo,
		logger:     log.With().Str("component", "engagement").Logger(),
	}
}

// Record stores an upvote for the visitor and reports whether it was newly
// created. A first-time creation kicks off an asynchronous score
// recomputation for the post.
func (rec *Recorder) Record(postID uuid.UUID, hashID string) (bool, error) {
	created, err := rec.upvoteRepo.CreateIfAbsent(postID, hashID)
	if err != nil {
		return false, err
	}
	if created {
		go rec.recomputeScore(postID)
	}
	return created, nil
}

// recomputeScore sets the post score to its distinct upvote count.
// Fire-and-forget: a failure only loses one recomputation, the next upvote
// repairs it.
func (rec *Recorder) recomputeScore(postID uuid.UUID) {
	count, err := rec.upvoteRepo.CountForPost(postID)
	if err != nil {
		rec.logger.Error().Err(err).Str("postID", postID.String()).Msg("counting upvotes for score recompute")
		return
	}
	if err := rec.postRepo.SetScore(postID, int(count)); err != nil {
		rec.logger.Error().Err(err).Str("postID", postID.String()).Msg("writing recomputed score")
	}
}
