// ABOUTME: Accounts API lookups for organizations and environments
// ABOUTME: Resolves the caller's org, its sub-org hierarchy and environment ids

package client

import (
	"context"
	"fmt"
	"net/url"
)

// OrganizationID returns the organization of the authenticated caller
func (c *Client) OrganizationID(ctx context.Context) (string, error) {
	const path = "/accounts/api/me"
	endpoint := "GET " + path

	body, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}

	var me struct {
		User *struct {
			Organization *struct {
				ID string `json:"id"`
			} `json:"organization"`
		} `json:"user"`
	}
	if err := decode(endpoint, body, &me); err != nil {
		return "", err
	}
	if me.User == nil || me.User.Organization == nil || me.User.Organization.ID == "" {
		return "", missing(endpoint, "user.organization.id")
	}
	return me.User.Organization.ID, nil
}

type orgNode struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SubOrganizations *[]orgNode `json:"subOrganizations"`
}

// SubOrganizations maps organization names to ids for the org and its
// direct children. The root comes first, so the result is never empty.
func (c *Client) SubOrganizations(ctx context.Context, orgID string) (*IDMap, error) {
	path := fmt.Sprintf("/accounts/api/organizations/%s/hierarchy", url.PathEscape(orgID))
	endpoint := "GET " + path

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var root orgNode
	if err := decode(endpoint, body, &root); err != nil {
		return nil, err
	}
	if root.ID == "" {
		return nil, missing(endpoint, "id")
	}
	if root.SubOrganizations == nil {
		return nil, missing(endpoint, "subOrganizations")
	}

	orgs := NewIDMap()
	orgs.Set(root.Name, root.ID)
	for i, sub := range *root.SubOrganizations {
		if sub.ID == "" {
			return nil, missing(endpoint, fmt.Sprintf("subOrganizations[%d].id", i))
		}
		orgs.Set(sub.Name, sub.ID)
	}
	return orgs, nil
}

// Environments maps environment names to ids within an organization
func (c *Client) Environments(ctx context.Context, orgID string) (*IDMap, error) {
	path := fmt.Sprintf("/accounts/api/organizations/%s/environments", url.PathEscape(orgID))
	endpoint := "GET " + path

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data *[]NamedID `json:"data"`
	}
	if err := decode(endpoint, body, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, missing(endpoint, "data")
	}

	envs := NewIDMap()
	for i, env := range *resp.Data {
		if env.ID == "" {
			return nil, missing(endpoint, fmt.Sprintf("data[%d].id", i))
		}
		envs.Set(env.Name, env.ID)
	}
	return envs, nil
}
