//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// ErrorCode classifies a fetch or parse failure.
type ErrorCode string

// Retrieval/extraction codes
const (
	CodeInvalidURL  ErrorCode = "INVALID_URL"
	CodeFetchFailed ErrorCode = "FETCH_FAILED"
	CodeNotArticle  ErrorCode = "NOT_ARTICLE"
	CodePaywall     ErrorCode = "PAYWALL"
	CodeBlocked     ErrorCode = "BLOCKED"
	CodeTimeout     ErrorCode = "TIMEOUT"
)

// Paste classification codes
const (
	CodeMissingContent ErrorCode = "MISSING_CONTENT"
	CodeTooShort       ErrorCode = "TOO_SHORT"
	CodeIsURL          ErrorCode = "IS_URL"
	CodeIsCode         ErrorCode = "IS_CODE"
	CodeParseFailed    ErrorCode = "PARSE_FAILED"
)

// InputRejection reports whether the code is the caller's fault rather than the environment's.
func (c ErrorCode) InputRejection() bool {
	switch c {
	case CodeMissingContent, CodeTooShort, CodeIsURL, CodeIsCode:
		return true
	default:
		return false
	}
}

// Failure is the failure branch of a fetch or parse.
type Failure struct {
	Code        ErrorCode
	Message     string
	Suggestion  string
	DetectedURL string
	Cause       error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// NewFailure creates a Failure without a cause.
func NewFailure(code ErrorCode, message, suggestion string) *Failure {
	return &Failure{Code: code, Message: message, Suggestion: suggestion}
}
