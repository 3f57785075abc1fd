package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(NotFound(), ErrNotFound))
	assert.True(t, errors.Is(NewForbiddenError("staff only"), ErrForbidden))
	assert.True(t, errors.Is(NewInternalError("boom"), ErrInternal))
	assert.True(t, errors.Is(NewInternalErrorWithCause("boom", assert.AnError), ErrInternal))
	assert.True(t, errors.Is(NewRateLimitedError("slow down"), ErrRateLimited))
	assert.True(t, errors.Is(NewInvalidFieldError("email", "bad"), ErrBadRequest))
	assert.True(t, errors.Is(NewCORSError("https://evil.example"), ErrCORSBlocked))
}

func TestErrorIncludesDetails(t *testing.T) {
	err := NewForbiddenError("staff only")
	assert.Equal(t, "operation not allowed: staff only", err.Error())
}

func TestIsHelpersClassifyByStatus(t *testing.T) {
	// Ad-hoc message constructors carry no sentinel; the helpers fall back
	// to the status code.
	assert.True(t, IsNotFound(NewNotFoundError("post not found")))
	assert.True(t, IsConflict(NewConflictError("slug taken")))
	assert.True(t, IsBadRequest(NewBadRequestError("bad payload")))
	assert.True(t, IsUnauthorized(NewUnauthorizedError("no session")))
	assert.False(t, IsNotFound(NewConflictError("slug taken")))
	assert.False(t, IsNotFound(nil))
}
