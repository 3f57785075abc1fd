package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrowblog/burrow/errs"
)

func testResponder() Responder {
	return NewResponder(zerolog.Nop())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteNotFoundShape(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteNotFound(rec)

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "not found", body["error"])
	assert.Equal(t, "error", body["status"])
}

func TestWriteJSONStatusSetsContentType(t *testing.T) {
	// The header must be committed before the status line, or the recorder
	// (like net/http) drops it.
	rec := httptest.NewRecorder()
	testResponder().WriteJSONStatus(rec, 201, map[string]string{"id": "abc"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestWriteErrorNotFoundUsesUniformShape(t *testing.T) {
	// Every 404, whatever its message, must come out identical so missing
	// and gated content are indistinguishable.
	uniform := httptest.NewRecorder()
	testResponder().WriteNotFound(uniform)

	for _, err := range []error{
		errs.NotFound(),
		errs.NewNotFoundError("post not found"),
		errs.NewDatabaseError("find post", "post", assert.AnError),
	} {
		rec := httptest.NewRecorder()
		testResponder().WriteError(rec, err)
		if errs.IsNotFound(err) {
			assert.Equal(t, uniform.Code, rec.Code)
			assert.JSONEq(t, uniform.Body.String(), rec.Body.String())
		}
	}
}

func TestWriteErrorStatusAndFields(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteError(rec, errs.NewInvalidFieldError("email", "not a valid email address"))

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "email", body["field"])
	assert.Equal(t, "error", body["status"])
}

func TestWriteErrorUnexpectedErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	testResponder().WriteError(rec, assert.AnError)

	assert.Equal(t, 500, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.NotContains(t, body["message"], assert.AnError.Error())
}
