package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/premium-reader/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code types.ErrorCode
		want int
	}{
		{types.CodeMissingContent, http.StatusBadRequest},
		{types.CodeTooShort, http.StatusBadRequest},
		{types.CodeIsURL, http.StatusBadRequest},
		{types.CodeIsCode, http.StatusBadRequest},
		{types.CodeParseFailed, http.StatusUnprocessableEntity},
		{types.CodeInvalidURL, http.StatusUnprocessableEntity},
		{types.CodeBlocked, http.StatusUnprocessableEntity},
		{types.CodePaywall, http.StatusUnprocessableEntity},
		{types.CodeTimeout, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", types.NewFailure(tt.code, "msg", ""))
			assert.Equal(t, tt.want, HTTPStatus(err))
		})
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestFailureResponse(t *testing.T) {
	resp := FailureResponse(&types.Failure{
		Code:        types.CodeIsURL,
		Message:     "This looks like a URL",
		Suggestion:  "Use fetch",
		DetectedURL: "https://example.com",
	})
	assert.Equal(t, ErrorResponse{
		Error:       "This looks like a URL",
		Code:        "IS_URL",
		Suggestion:  "Use fetch",
		DetectedURL: "https://example.com",
	}, resp)

	assert.Equal(t, "Internal server error", FailureResponse(errors.New("x")).Error)
}
