// ABOUTME: Application Manager API calls for deployments in an environment
// ABOUTME: Lists deployments and reads per-deployment vCore and replica sizing

package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

func deploymentsPath(orgID, envID string) string {
	return fmt.Sprintf("/amc/application-manager/api/v2/organizations/%s/environments/%s/deployments/",
		url.PathEscape(orgID), url.PathEscape(envID))
}

// Deployments lists every deployment in an environment, whatever its status
func (c *Client) Deployments(ctx context.Context, orgID, envID string) ([]Deployment, error) {
	path := deploymentsPath(orgID, envID)
	endpoint := "GET " + path

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items *[]struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Application *struct {
				Status string `json:"status"`
			} `json:"application"`
		} `json:"items"`
	}
	if err := decode(endpoint, body, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, missing(endpoint, "items")
	}

	deployments := make([]Deployment, 0, len(*resp.Items))
	for i, item := range *resp.Items {
		if item.Application == nil {
			return nil, missing(endpoint, fmt.Sprintf("items[%d].application", i))
		}
		deployments = append(deployments, Deployment{
			ID:     item.ID,
			Name:   item.Name,
			Status: item.Application.Status,
		})
	}
	return deployments, nil
}

// ResourceAllocation reads the vCore size and replica count of a deployment.
// The raw response is also handed to the debug dumper, if one is set.
func (c *Client) ResourceAllocation(ctx context.Context, orgID, envID, deploymentID string) (*ResourceAllocation, error) {
	path := deploymentsPath(orgID, envID) + url.PathEscape(deploymentID)
	endpoint := "GET " + path

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	c.dump(body)

	var detail struct {
		Application *struct {
			VCores *float64 `json:"vCores"`
		} `json:"application"`
		Target *struct {
			Replicas *int `json:"replicas"`
		} `json:"target"`
	}
	if err := decode(endpoint, body, &detail); err != nil {
		return nil, err
	}
	if detail.Application == nil || detail.Application.VCores == nil {
		return nil, missing(endpoint, "application.vCores")
	}
	if detail.Target == nil || detail.Target.Replicas == nil {
		return nil, missing(endpoint, "target.replicas")
	}

	alloc := &ResourceAllocation{
		DeploymentID: deploymentID,
		VCores:       *detail.Application.VCores,
		Replicas:     *detail.Target.Replicas,
	}
	if alloc.VCores < 0 || alloc.Replicas < 0 {
		return nil, &MalformedResponseError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("negative allocation (vCores=%v, replicas=%d)", alloc.VCores, alloc.Replicas),
		}
	}
	return alloc, nil
}

// dump writes the debug artifact; failures are logged and never returned
func (c *Client) dump(body []byte) {
	if c.dumper == nil {
		return
	}
	if err := c.dumper.Write(body); err != nil {
		slog.Warn("Failed to write debug dump", "error", &LocalIOError{Path: c.dumper.Path(), Err: err})
	}
}
