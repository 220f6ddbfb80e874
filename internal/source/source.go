package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/automation-sync/internal/model"
)

// AuthError indicates that authentication has failed for the remote service.
// It is returned by clients when the token is rejected.
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.URL, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-success response from the remote service.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"api error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message,
	)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// WorkItemAPI is the remote work item store consumed by the synchronizer.
type WorkItemAPI interface {
	// GetWorkItem reads a work item, returning only the requested fields.
	GetWorkItem(ctx context.Context, id int, fields []string) (*model.WorkItem, error)

	// UpdateWorkItem applies a patch document to a work item and returns
	// the updated item.
	UpdateWorkItem(
		ctx context.Context,
		patch model.PatchDocument,
		id int,
	) (*model.WorkItem, error)
}
