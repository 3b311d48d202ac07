// ABOUTME: Shared connection flow for commands that talk to the control plane
// ABOUTME: Resolves the endpoint, authenticates and loads the organization hierarchy

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/dump"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/selector"
)

// Exit codes
const (
	exitOK      = 0
	exitError   = 2
	exitAborted = 130
)

// session is an authenticated client and the organizations it can see
type session struct {
	api    *client.Client
	region client.Region
	orgs   *client.IDMap
}

// connect authenticates and fetches the business group hierarchy
func connect(ctx context.Context, c *config.Config, sel selector.Selector) (*session, error) {
	region, baseURL, err := resolveEndpoint(ctx, c, sel)
	if err != nil {
		return nil, err
	}

	creds, err := sel.Credentials(ctx, c.Credentials())
	if err != nil {
		return nil, err
	}

	api, err := newClient(c, baseURL)
	if err != nil {
		return nil, err
	}

	slog.Debug("Authenticating", "base_url", api.BaseURL(), "credentials", creds)
	if err := api.Authenticate(ctx, creds); err != nil {
		return nil, err
	}

	rootID, err := api.OrganizationID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization: %w", err)
	}

	orgs, err := api.SubOrganizations(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list business groups: %w", err)
	}
	slog.Debug("Organizations loaded", "root", rootID, "count", orgs.Len())

	return &session{api: api, region: region, orgs: orgs}, nil
}

// resolveEndpoint returns the region and URL to talk to.
// An explicit base URL skips the region prompt.
func resolveEndpoint(ctx context.Context, c *config.Config, sel selector.Selector) (client.Region, string, error) {
	if c.BaseURL != "" {
		var region client.Region
		if c.Region != "" {
			r, err := client.ParseRegion(c.Region)
			if err != nil {
				return "", "", err
			}
			region = r
		}
		return region, c.BaseURL, nil
	}

	region, err := sel.Region(ctx)
	if err != nil {
		return "", "", err
	}
	return region, region.BaseURL(), nil
}

// newClient builds an API client honoring timeout, proxy and debug dump settings
func newClient(c *config.Config, baseURL string) (*client.Client, error) {
	opts := []client.Option{client.WithTimeout(c.Timeout)}

	if c.Proxy != "" {
		dial, err := client.ProxyDialer(c.Proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithDialContext(dial))
	}

	if d := dump.New(c.DebugFile); d != nil {
		opts = append(opts, client.WithDumper(d))
	}

	return client.New(baseURL, opts...), nil
}

// organization asks the selector for a business group and resolves its id
func (s *session) organization(ctx context.Context, sel selector.Selector) (client.NamedID, error) {
	name, err := sel.Organization(ctx, s.orgs)
	if err != nil {
		return client.NamedID{}, err
	}
	id, ok := s.orgs.Lookup(name)
	if !ok {
		return client.NamedID{}, fmt.Errorf("unknown organization %q", name)
	}
	return client.NamedID{Name: name, ID: id}, nil
}

// environments lists the environments of org
func (s *session) environments(ctx context.Context, org client.NamedID) (*client.IDMap, error) {
	envs, err := s.api.Environments(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments of %s: %w", org.Name, err)
	}
	return envs, nil
}

// printError writes the error and a hint for the common failure classes
func printError(w io.Writer, err error) int {
	if errors.Is(err, selector.ErrAborted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Aborted.")
		return exitAborted
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
	return exitError
}

func errorHint(err error) string {
	var authErr *client.AuthError
	var malformedErr *client.MalformedResponseError
	var remoteErr *client.RemoteError

	switch {
	case errors.As(err, &authErr):
		return "check the connected app client id, secret and region"
	case errors.As(err, &malformedErr):
		return "the control plane answered with an unexpected payload, rerun with --verbose for details"
	case errors.As(err, &remoteErr) && remoteErr.StatusCode >= 500:
		return "the control plane is unavailable, try again later"
	}
	return ""
}
