// ABOUTME: Selector fed by flags and config, with an optional prompt fallback
// ABOUTME: Validates requested organization and environment names against the API

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/selector"
)

// flagSelector answers from configured values and asks fallback for the rest.
// Without a fallback, missing values are errors (except region and detail level).
type flagSelector struct {
	cfg      *config.Config
	fallback selector.Selector
}

// newSelector picks the prompt fallback when a terminal is available
func newSelector(c *config.Config, tty terminal) selector.Selector {
	s := &flagSelector{cfg: c}
	if !c.NonInteractive && tty.stdin && tty.stderr {
		s.fallback = selector.New()
	}
	return s
}

// Region uses the configured region, then the prompt, then EU
func (s *flagSelector) Region(ctx context.Context) (client.Region, error) {
	if s.cfg.Region != "" {
		return client.ParseRegion(s.cfg.Region)
	}
	if s.fallback != nil {
		return s.fallback.Region(ctx)
	}
	return client.RegionEU, nil
}

func (s *flagSelector) Credentials(ctx context.Context, partial client.Credentials) (client.Credentials, error) {
	if partial.Complete() {
		return partial, nil
	}
	if s.fallback != nil {
		return s.fallback.Credentials(ctx, partial)
	}
	return partial, errors.New("client id and secret are required (set VCORE_CLIENT_ID and VCORE_CLIENT_SECRET)")
}

// Organization accepts either a business group name or its id
func (s *flagSelector) Organization(ctx context.Context, orgs *client.IDMap) (string, error) {
	if s.cfg.Org != "" {
		return resolveName(orgs, s.cfg.Org, "organization")
	}
	if s.fallback != nil {
		return s.fallback.Organization(ctx, orgs)
	}
	if orgs.Len() == 1 {
		return orgs.Names()[0], nil
	}
	return "", fmt.Errorf("--org is required, choose one of: %s", strings.Join(orgs.Names(), ", "))
}

// Environments keeps the order the names were given in
func (s *flagSelector) Environments(ctx context.Context, envs *client.IDMap) ([]string, error) {
	if s.cfg.AllEnvs {
		if envs.Len() == 0 {
			return nil, errors.New("organization has no environments")
		}
		return envs.Names(), nil
	}
	if len(s.cfg.Envs) > 0 {
		names := make([]string, 0, len(s.cfg.Envs))
		seen := make(map[string]bool, len(s.cfg.Envs))
		for _, requested := range s.cfg.Envs {
			name, err := resolveName(envs, requested, "environment")
			if err != nil {
				return nil, err
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return names, nil
	}
	if s.fallback != nil {
		return s.fallback.Environments(ctx, envs)
	}
	return nil, fmt.Errorf("--env or --all-envs is required, available: %s", strings.Join(envs.Names(), ", "))
}

func (s *flagSelector) Detailed(ctx context.Context) (bool, error) {
	if s.cfg.DetailedSet || s.fallback == nil {
		return s.cfg.Detailed, nil
	}
	return s.fallback.Detailed(ctx)
}

// resolveName matches value against names first and ids second
func resolveName(m *client.IDMap, value, kind string) (string, error) {
	if _, ok := m.Lookup(value); ok {
		return value, nil
	}
	for _, entry := range m.Entries() {
		if entry.ID == value {
			return entry.Name, nil
		}
	}
	for _, name := range m.Names() {
		if strings.EqualFold(name, value) {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q, available: %s", kind, value, strings.Join(m.Names(), ", "))
}
