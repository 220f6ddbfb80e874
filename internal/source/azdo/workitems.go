package azdo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/source"
)

// WorkItemTrackingAPI reads and updates work items.
type WorkItemTrackingAPI struct {
	client *Client
}

var _ source.WorkItemAPI = (*WorkItemTrackingAPI)(nil)

// GetWorkItem retrieves a work item by id. When fields is non-empty only
// those fields are returned.
func (a *WorkItemTrackingAPI) GetWorkItem(
	ctx context.Context,
	id int,
	fields []string,
) (*model.WorkItem, error) {
	query := url.Values{}
	query.Set("api-version", apiVersion)
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}

	var item model.WorkItem
	path := fmt.Sprintf("/_apis/wit/workitems/%d", id)
	if err := a.client.Get(ctx, path, query, &item); err != nil {
		return nil, fmt.Errorf("fetching work item %d: %w", id, err)
	}
	return &item, nil
}

// UpdateWorkItem applies a JSON patch document to a work item.
func (a *WorkItemTrackingAPI) UpdateWorkItem(
	ctx context.Context,
	patch model.PatchDocument,
	id int,
) (*model.WorkItem, error) {
	query := url.Values{}
	query.Set("api-version", apiVersion)

	var item model.WorkItem
	path := fmt.Sprintf("/_apis/wit/workitems/%d", id)
	if err := a.client.Patch(ctx, path, query, patch, &item); err != nil {
		return nil, fmt.Errorf("updating work item %d: %w", id, err)
	}
	return &item, nil
}
