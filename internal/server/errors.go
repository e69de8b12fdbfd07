package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/premium-reader/internal/types"
)

// CodeRateLimited is the envelope code for 429 responses.
const CodeRateLimited = "RATE_LIMITED"

// ErrorResponse is the failure envelope shared by all routes.
type ErrorResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
	DetectedURL string `json:"detectedUrl,omitempty"`
}

// HTTPStatus returns the status for a fetch or parse failure: input rejections
// are 400, retrieval and extraction failures 422, anything else 500.
func HTTPStatus(err error) int {
	var failure *types.Failure
	if !errors.As(err, &failure) {
		return http.StatusInternalServerError
	}
	if failure.Code.InputRejection() {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// FailureResponse builds the envelope for err.
func FailureResponse(err error) ErrorResponse {
	var failure *types.Failure
	if !errors.As(err, &failure) {
		return ErrorResponse{Error: "Internal server error"}
	}
	return ErrorResponse{
		Error:       failure.Message,
		Code:        string(failure.Code),
		Suggestion:  failure.Suggestion,
		DetectedURL: failure.DetectedURL,
	}
}

func (s *Server) failureResponse(w http.ResponseWriter, err error) {
	s.jsonResponse(w, HTTPStatus(err), FailureResponse(err))
}
