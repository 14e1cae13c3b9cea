// Package client provides the core Searchbase HTTP client: canonical request
// construction, single-page search, and uniform error handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/searchbase-dev/searchbase-go/pkg/query"
)

// Prometheus metrics for Searchbase client operations.
var (
	searchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchbase_requests_total",
		Help: "Total search requests by HTTP status",
	}, []string{"status"})

	searchRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "searchbase_request_duration_seconds",
		Help:    "Search request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	searchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchbase_errors_total",
		Help: "Total search failures by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of search failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport and decode errors.
	ErrorClassNetwork ErrorClass = "network"
)

// DefaultBaseURL is the hosted Searchbase API root.
const DefaultBaseURL = "https://api.searchbase.dev"

// Version is reported in the default User-Agent header.
const Version = "0.1.0"

const (
	searchPath  = "/search"
	tokenHeader = "x-searchbase-token"

	// maxErrorBody bounds how much of an error response body is read when
	// looking for a structured message.
	maxErrorBody = 4 << 10
)

// Range reports which slice of the full result set a response covers.
// End equals Start plus the number of records returned; it is the offset the
// next page must be requested at, authoritative over any client-side count.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResponse is one decoded page of search results.
//
// Total is the server's count of all matching records at the moment the page
// was served; it may differ between pages of one traversal if the underlying
// data changes. Records are opaque JSON objects returned exactly as received.
type SearchResponse struct {
	Total   int               `json:"total"`
	Range   Range             `json:"range"`
	Records []json.RawMessage `json:"records"`
}

// searchRequest is the wire envelope for one search call.
type searchRequest struct {
	Query query.Payload `json:"query"`
}

// Client is the Searchbase API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root to call. Defaults to DefaultBaseURL.
	BaseURL string

	// Token is the opaque API token sent on every request (REQUIRED).
	Token string

	// UserAgent identifies this client. Defaults to "searchbase-go/<version>".
	UserAgent string

	// HTTPClient performs the underlying requests. When nil a pooled client
	// is built with Timeout applied. Timeout and cancellation policy for
	// in-flight requests lives here, not in the library.
	HTTPClient *http.Client

	// Timeout for the built-in HTTP client. Ignored when HTTPClient is set.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration for the hosted service.
func DefaultConfig(token string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Token:     token,
		UserAgent: "searchbase-go/" + Version,
		Timeout:   30 * time.Second,
	}
}

// New creates a new Searchbase client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("api token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = "searchbase-go/" + Version
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = timeout
	}

	// Initialize logger
	logger := log.With().Str("component", "searchbase-client").Logger()

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Search executes a single search call and returns the decoded page
// unchanged. Every failure path returns a *SearchError.
func (c *Client) Search(ctx context.Context, q *query.Query) (*SearchResponse, error) {
	startTime := time.Now()
	defer func() {
		searchRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	body, err := json.Marshal(searchRequest{Query: q.Payload()})
	if err != nil {
		return nil, newNetworkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set(tokenHeader, c.config.Token)

	c.logger.Debug().
		Str("index", q.Index).
		Int("limit", q.Limit).
		Int("offset", q.Offset).
		Msg("Executing search request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		searchErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		searchRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("index", q.Index).Msg("Search request failed")
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		searchErr := newHTTPError(resp.StatusCode, errBody)

		errClass := classifyStatus(resp.StatusCode)
		searchErrorsTotal.WithLabelValues(string(errClass)).Inc()
		searchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("index", q.Index).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Search request error")

		return nil, searchErr
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		searchErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		searchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		c.logger.Error().Err(err).Str("index", q.Index).Msg("Search response decode failed")
		return nil, newNetworkError(err)
	}

	searchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug().
		Str("index", q.Index).
		Int("total", result.Total).
		Int("records", len(result.Records)).
		Int("range_start", result.Range.Start).
		Int("range_end", result.Range.End).
		Msg("Search request complete")

	return &result, nil
}

// Close releases idle connections held by the built-in HTTP client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
