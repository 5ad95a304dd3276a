package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// maxTwoFactorAttempts bounds the OTP retry loop during authorization
// creation.
const maxTwoFactorAttempts = 3

// ErrTwoFactorRequired is returned when authorization creation keeps being
// challenged for a one-time password after the retry budget is spent.
var ErrTwoFactorRequired = errors.New("two-factor authentication challenge not satisfied")

// OTPPrompt supplies a one-time password for a two-factor challenge. attempt
// starts at 1.
type OTPPrompt func(attempt int) (string, error)

// authorizationRequest is the payload of POST /authorizations.
type authorizationRequest struct {
	Scopes []string `json:"scopes"`
	Note   string   `json:"note"`
}

// authorizationResponse is the part of the response we need.
type authorizationResponse struct {
	Token string `json:"token"`
}

// CreateAuthorization creates a personal access token using basic
// credentials. When the host answers with a two-factor challenge, otpPrompt
// is asked for a one-time password and the request is retried, at most
// maxTwoFactorAttempts times.
func (c *Client) CreateAuthorization(ctx context.Context, login, password, note string, otpPrompt OTPPrompt) (string, error) {
	payload, err := json.Marshal(authorizationRequest{
		Scopes: []string{"repo"},
		Note:   note,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode authorization request: %w", err)
	}

	otp := ""
	for attempt := 0; attempt <= maxTwoFactorAttempts; attempt++ {
		req, err := c.NewRequest(ctx, "POST", "/authorizations", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.SetBasicAuth(login, password)
		if otp != "" {
			req.Header.Set("X-GitHub-OTP", otp)
		}

		var auth authorizationResponse
		err = c.Do(req, &auth)
		if err == nil {
			if auth.Token == "" {
				return "", fmt.Errorf("authorization created but no token returned")
			}
			return auth.Token, nil
		}

		if !IsTwoFactorChallenge(err) {
			return "", fmt.Errorf("failed to create authorization: %w", err)
		}
		if attempt == maxTwoFactorAttempts {
			break
		}

		otp, err = otpPrompt(attempt + 1)
		if err != nil {
			return "", fmt.Errorf("failed to read one-time password: %w", err)
		}
	}

	return "", ErrTwoFactorRequired
}
