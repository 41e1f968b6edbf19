package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Client talks to one project collection. The base URL is the collection
// endpoint; the token is a personal access token sent as basic auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger enables request logging for diagnostic runs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] for the given collection URL and access token.
func New(collectionURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(collectionURL, "/"),
		token:      accessToken,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Definitions returns the build definitions in project matching name exactly.
func (c *Client) Definitions(ctx context.Context, project, name string) ([]Definition, error) {
	q := url.Values{}
	q.Set("name", name)
	var resp listResponse[Definition]
	if err := c.get(ctx, project, "build/definitions", q, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// LatestBuild returns the most recent completed build of the definition
// whose result is succeeded or partiallySucceeded, or nil if there is none.
// Ordering is the server's default most-recent-first.
func (c *Client) LatestBuild(ctx context.Context, project string, definitionID int) (*Build, error) {
	q := url.Values{}
	q.Set("definitions", strconv.Itoa(definitionID))
	q.Set("statusFilter", statusFilter)
	q.Set("resultFilter", resultFilter)
	q.Set("$top", "1")
	var resp listResponse[Build]
	if err := c.get(ctx, project, "build/builds", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, nil
	}
	return &resp.Value[0], nil
}

// TestRuns returns the test runs recorded against the build with buildURI.
func (c *Client) TestRuns(ctx context.Context, project, buildURI string) ([]TestRun, error) {
	q := url.Values{}
	q.Set("buildUri", buildURI)
	var resp listResponse[TestRun]
	if err := c.get(ctx, project, "test/runs", q, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// TestResults returns all test-case results of the run.
func (c *Client) TestResults(ctx context.Context, project string, runID int) ([]TestResult, error) {
	var resp listResponse[TestResult]
	if err := c.get(ctx, project, fmt.Sprintf("test/runs/%d/results", runID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azdo: HTTP %d: %s", e.StatusCode, e.Message)
}

func (c *Client) get(ctx context.Context, project, resource string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", apiVersion)
	u := fmt.Sprintf("%s/%s/_apis/%s?%s", c.baseURL, url.PathEscape(project), resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("azdo: %w", err)
	}
	req.SetBasicAuth("", c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", u).Msg("azdo request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("azdo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("azdo: decode response: %w", err)
	}
	return nil
}
