package azdo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/automation-sync/internal/source"
)

// Connection is a handle to an Azure DevOps organization. It is cheap to
// create; no request is made until an API client is acquired.
type Connection struct {
	client *Client
}

// NewConnection creates a connection authenticated with a Personal Access
// Token. The retry policy in opts applies to every API acquired from it.
func NewConnection(orgURL, token string, opts RequestOptions) *Connection {
	return &Connection{client: NewClient(orgURL, token, opts)}
}

// WorkItemTrackingAPI acquires a work item tracking client. The resource
// area is resolved first so hosted organizations are routed to the right
// service instance; servers without resource areas (404) use the
// organization URL directly.
func (c *Connection) WorkItemTrackingAPI(ctx context.Context) (*WorkItemTrackingAPI, error) {
	baseURL, err := c.resourceAreaURL(ctx, workItemTrackingAreaID)
	if err != nil {
		return nil, fmt.Errorf("acquiring work item tracking api: %w", err)
	}
	return &WorkItemTrackingAPI{client: c.client.withBaseURL(baseURL)}, nil
}

// resourceAreaURL returns the location URL registered for a resource area.
func (c *Connection) resourceAreaURL(ctx context.Context, areaID string) (string, error) {
	query := url.Values{}
	query.Set("api-version", resourceAreasAPIVersion)

	var area ResourceArea
	err := c.client.Get(ctx, "/_apis/resourceAreas/"+areaID, query, &area)
	if source.IsNotFound(err) {
		return c.client.BaseURL(), nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving resource area %s: %w", areaID, err)
	}

	if area.LocationURL == "" {
		return c.client.BaseURL(), nil
	}
	return area.LocationURL, nil
}
