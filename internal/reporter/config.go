package reporter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMaxRetries is the retry budget passed to the remote client.
const DefaultMaxRetries = 20

var (
	// ErrMissingOrgURL is returned when no organization URL is configured.
	ErrMissingOrgURL = errors.New("organization URL is required")

	// ErrMissingToken is returned when no Personal Access Token is configured.
	ErrMissingToken = errors.New("personal access token is required")
)

// Config holds the construction-time settings of a Reporter.
type Config struct {
	// OrgURL is the Azure DevOps organization URL.
	OrgURL string

	// Token is the Personal Access Token used for every request.
	Token string

	// MaxRetries bounds retries of throttled or failed remote calls.
	// Zero selects DefaultMaxRetries.
	MaxRetries int
}

// Validate checks required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OrgURL) == "" {
		return ErrMissingOrgURL
	}
	parsed, err := url.Parse(c.OrgURL)
	if err != nil {
		return fmt.Errorf("invalid organization URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf(
			"organization URL %q must include scheme and host "+
				"(e.g., https://dev.azure.com/contoso)", c.OrgURL,
		)
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

func (c Config) maxRetries() int {
	if c.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}
