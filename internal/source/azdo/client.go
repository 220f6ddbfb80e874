package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/automation-sync/internal/source"
)

// maxBackoff caps a single wait between retries.
const maxBackoff = 30 * time.Second

// RequestOptions controls the retry policy of every request made through a
// connection.
type RequestOptions struct {
	AllowRetries bool
	MaxRetries   int
}

// Client is a thin HTTP client for the Azure DevOps REST API.
// It handles Personal Access Token authentication, JSON marshaling, and
// retry with exponential backoff on throttling and gateway errors.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new Azure DevOps HTTP client. The baseURL is the
// organization (or resource area) URL, e.g. https://dev.azure.com/contoso.
func NewClient(baseURL, token string, opts RequestOptions) *Client {
	maxRetries := 0
	if opts.AllowRetries && opts.MaxRetries > 0 {
		maxRetries = opts.MaxRetries
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
		baseDelay:  time.Second,
	}
}

// BaseURL returns the URL all request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// withBaseURL returns a copy of the client rooted at another base URL,
// sharing the HTTP client and credentials.
func (c *Client) withBaseURL(baseURL string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", result)
}

// Patch performs an HTTP PATCH request with a JSON patch body and
// unmarshals the JSON response.
func (c *Client) Patch(
	ctx context.Context,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPatch, path, query, body, jsonPatchContentType, result)
}

// do is the core HTTP method that builds the request, handles auth,
// throttling with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	contentType string,
	result interface{},
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
		if contentType == "" {
			contentType = "application/json"
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", c.authHeader())
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if isRetryable(resp.StatusCode) {
			lastErr = newAPIError(resp.StatusCode, method, path, respBody)
			if attempt == c.maxRetries {
				break
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryAfterDuration(resp, attempt)):
				continue
			}
		}

		// A rejected PAT yields 401, or 203 with the sign-in page.
		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusNonAuthoritativeInfo {
			return &source.AuthError{
				URL: c.baseURL,
				Message: fmt.Sprintf(
					"authentication failed (%d): check your Personal Access Token",
					resp.StatusCode,
				),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newAPIError(resp.StatusCode, method, path, respBody)
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// authHeader builds the Basic credentials Azure DevOps expects for a PAT:
// an empty user name and the token as password.
func (c *Client) authHeader() string {
	creds := base64.StdEncoding.EncodeToString([]byte(":" + c.token))
	return "Basic " + creds
}

// newAPIError builds a source.APIError, preferring the service's own
// message over the raw body.
func newAPIError(status int, method, path string, body []byte) *source.APIError {
	msg := strings.TrimSpace(string(body))
	var adoErr ErrorResponse
	if json.Unmarshal(body, &adoErr) == nil && adoErr.Message != "" {
		msg = adoErr.Message
	}
	return &source.APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    msg,
	}
}

// isRetryable reports whether a status code indicates a transient failure.
func isRetryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func (c *Client) retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			wait := time.Duration(seconds) * time.Second
			if wait > maxBackoff {
				wait = maxBackoff
			}
			return wait
		}
	}

	// Exponential backoff: base, 2*base, 4*base, ...
	shift := attempt
	if shift > 16 {
		shift = 16
	}
	backoff := c.baseDelay * time.Duration(1<<uint(shift))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
