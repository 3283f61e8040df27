package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "SERVICE_UNAVAILABLE", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusServiceUnavailable)))
}

func TestConstructors(t *testing.T) {
	code := "RECIPE_NOT_FOUND"

	tests := []struct {
		name       string
		err        *HTTPError
		wantStatus int
		wantCode   string
	}{
		{"bad request", NewBadRequestError("bad", false, nil, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found custom code", NewNotFoundError("gone", true, &code), http.StatusNotFound, "RECIPE_NOT_FOUND"},
		{"too many requests", NewTooManyRequestsError("slow down"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"unavailable", NewServiceUnavailableError("db down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"validation", ValidationError(errors.New("name is required")), http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestHTTPError_Is(t *testing.T) {
	err := NewNotFoundError("gone", false, nil)

	assert.ErrorIs(t, err, &HTTPError{})
	assert.NotErrorIs(t, err, errors.New("gone"))
	assert.Equal(t, "gone", err.Error())
}
