// ABOUTME: Error types returned by the control plane client
// ABOUTME: Distinguishes auth failures, remote errors and malformed payloads

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrorBody caps the response body kept on a RemoteError
const maxErrorBody = 512

// AuthError reports rejected credentials or an unusable token
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError is any non-2xx response from the control plane
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// MalformedResponseError means a response decoded but lacked an expected field
type MalformedResponseError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("invalid response from %s: missing %s", e.Endpoint, e.Field)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// LocalIOError wraps a failed debug dump write. The client logs it and moves on.
type LocalIOError struct {
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// errNotAuthenticated is returned by bearer calls made before Authenticate
var errNotAuthenticated = errors.New("no access token, call Authenticate first")

// newStatusError maps a non-2xx status to AuthError or RemoteError
func newStatusError(endpoint string, status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	remote := &RemoteError{Endpoint: endpoint, StatusCode: status, Body: string(body)}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Err: remote}
	}
	return remote
}
