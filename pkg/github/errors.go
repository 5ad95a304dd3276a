package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a hosting API error response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []APIErrorDetail `json:"errors,omitempty"`

	// OTPHeader carries the X-GitHub-OTP response header when present, used
	// to recognize two-factor challenges during authorization creation.
	OTPHeader string
}

// APIErrorDetail represents individual error details from the API.
type APIErrorDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GitHub API error (status %d)", e.StatusCode)
}

// IsNotFoundError returns true if the error is a not-found error, covering
// both our APIError and go-github's ErrorResponse.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return err != nil && strings.Contains(err.Error(), "404")
}

// IsAuthenticationError returns true for 401/403 responses that are not
// two-factor challenges.
func IsAuthenticationError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if IsTwoFactorChallenge(err) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusForbidden
}

// IsTwoFactorChallenge returns true when the API rejected basic credentials
// pending a one-time password. This is distinct from general authentication
// failure: the caller should prompt for an OTP and retry.
func IsTwoFactorChallenge(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized &&
		strings.Contains(strings.ToLower(apiErr.OTPHeader), "required")
}

// parseErrorResponse builds an APIError from a non-2xx response.
func parseErrorResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		OTPHeader:  resp.Header.Get("X-GitHub-OTP"),
	}

	var hostErr struct {
		Message string           `json:"message"`
		Errors  []APIErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &hostErr); err == nil {
		apiErr.Message = hostErr.Message
		apiErr.Errors = hostErr.Errors
	} else {
		apiErr.Message = string(body)
	}

	return apiErr
}
