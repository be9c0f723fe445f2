// Package notion implements a typed client for the workspace API's
// database and page endpoints.
package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// APIVersion is sent on every request; payload shapes in this
	// package track this version.
	APIVersion = "2022-06-28"

	// MaxPageSize is the largest page size accepted by the query
	// endpoint, and the per-request row cap on append.
	MaxPageSize = 100
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "notion_table",
	Name:      "api_requests_total",
	Help:      "API requests by endpoint and status code.",
}, []string{"endpoint", "status"})

var _ Operations = &Client{}

type Operations interface {
	GetDatabase(ctx context.Context, databaseID string) (*Database, error)
	QueryDatabase(ctx context.Context, databaseID, startCursor string, pageSize int) (*QueryResult, error)
	CreateDatabase(ctx context.Context, parentPageID, title string, properties *PropertyConfigs) (*Database, error)
	GetPage(ctx context.Context, pageID string) (*Page, error)
	AppendRows(ctx context.Context, databaseID string, rows []map[string]PropertyValue) ([]*Page, error)
}

type Client struct {
	c       *http.Client
	baseURL string
	log     zerolog.Logger
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.c = hc
	}
}

// NewClient returns a client authenticating with the given bearer token.
func NewClient(apiKey string, log zerolog.Logger, options ...ClientOption) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})

	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = 30 * time.Second

	c := &Client{
		c:       hc,
		baseURL: DefaultBaseURL,
		log:     log,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, v interface{}) error {
	var buf io.Reader
	if body != nil {
		b := &bytes.Buffer{}
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		buf = b
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}

	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.c.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method+" "+path, "transport_error").Inc()

		return &TransportError{Err: err}
	}
	defer res.Body.Close()

	requestsTotal.WithLabelValues(method+" "+path, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode > 299 {
		return c.responseError(res)
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

func (c *Client) responseError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}
	if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil {
		apiErr.Message = "unparseable error body"
	}

	c.log.Debug().
		Int("status", res.StatusCode).
		Str("code", apiErr.Code).
		Msg("api error response")

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", apiErr.Message, ErrUnauthorized)
	case res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", apiErr.Message, ErrPermissionDenied)
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", apiErr.Message, ErrNotExist)
	case res.StatusCode == http.StatusTooManyRequests:
		return &ThrottleError{RetryAfter: retryAfter(res)}
	case res.StatusCode >= 500:
		return &ServerError{StatusCode: res.StatusCode}
	}

	return apiErr
}

func retryAfter(res *http.Response) time.Duration {
	secs, err := strconv.Atoi(res.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.request(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return nil, fmt.Errorf("retrieving database %s: %w", databaseID, err)
	}

	return &db, nil
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabase fetches one page of rows. An empty startCursor starts a
// new sweep; pageSize is clamped to MaxPageSize by the server.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, startCursor string, pageSize int) (*QueryResult, error) {
	body := queryRequest{
		StartCursor: startCursor,
		PageSize:    pageSize,
	}

	var result QueryResult
	if err := c.request(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", body, &result); err != nil {
		return nil, err
	}

	if result.Object != "list" {
		return nil, fmt.Errorf("expected list response, got %q", result.Object)
	}

	return &result, nil
}

type createDatabaseRequest struct {
	Parent     Parent           `json:"parent"`
	Title      []RichText       `json:"title"`
	Properties *PropertyConfigs `json:"properties"`
}

func (c *Client) CreateDatabase(ctx context.Context, parentPageID, title string, properties *PropertyConfigs) (*Database, error) {
	body := createDatabaseRequest{
		Parent:     Parent{Type: "page_id", PageID: parentPageID},
		Title:      EncodeRichText(title),
		Properties: properties,
	}

	var db Database
	if err := c.request(ctx, http.MethodPost, "/v1/databases", body, &db); err != nil {
		return nil, fmt.Errorf("creating database under page %s: %w", parentPageID, err)
	}

	if db.Object != "database" {
		return nil, fmt.Errorf("expected database response, got %q", db.Object)
	}

	return &db, nil
}

func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.request(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return nil, fmt.Errorf("retrieving page %s: %w", pageID, err)
	}

	return &page, nil
}

type appendRowsRequest struct {
	Rows []map[string]PropertyValue `json:"rows"`
}

type appendRowsResponse struct {
	Object  string  `json:"object"`
	Results []*Page `json:"results"`
}

// AppendRows appends up to MaxPageSize rows to a database in one request.
func (c *Client) AppendRows(ctx context.Context, databaseID string, rows []map[string]PropertyValue) ([]*Page, error) {
	if len(rows) > MaxPageSize {
		return nil, fmt.Errorf("append of %d rows exceeds the per request maximum of %d", len(rows), MaxPageSize)
	}

	var result appendRowsResponse
	if err := c.request(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/rows", appendRowsRequest{Rows: rows}, &result); err != nil {
		return nil, err
	}

	return result.Results, nil
}
