// ABOUTME: Client credentials grant against the Anypoint accounts API
// ABOUTME: Obtains the bearer token reused by every later call in a run

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const tokenPath = "/accounts/api/v2/oauth2/token"

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Authenticate exchanges client credentials for an access token.
// Every failure is reported as an *AuthError.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) error {
	endpoint := "POST " + tokenPath

	body, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
	})
	if err != nil {
		return &AuthError{Err: fmt.Errorf("failed to marshal token request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.Debug("Requesting access token", "credentials", creds)

	respBody, err := c.do(ctx, req, endpoint)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &AuthError{Err: err}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := decode(endpoint, respBody, &tokenResp); err != nil {
		return &AuthError{Err: err}
	}
	if tokenResp.AccessToken == "" {
		return &AuthError{Err: missing(endpoint, "access_token")}
	}

	c.token = tokenResp.AccessToken
	return nil
}
