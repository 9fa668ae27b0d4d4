package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"jobmarket/internal/config"
)

var (
	// ErrNoResponse means the request never received an HTTP response
	// (DNS failure, connection refused, timeout).
	ErrNoResponse = errors.New("no response from upstream")
	// ErrMalformedResponse means the upstream answered 2xx but the body is
	// missing the data array. Fatal, never retried.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// StatusError is an upstream HTTP error that did carry a response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

type SearchRequest struct {
	Query    string
	Page     string
	NumPages string
}

// Record is one raw upstream posting, field names per the JSearch schema.
type Record struct {
	Title         string   `json:"job_title"`
	Company       string   `json:"employer_name"`
	City          string   `json:"job_city"`
	Country       string   `json:"job_country"`
	MinSalary     *float64 `json:"job_min_salary"`
	MaxSalary     *float64 `json:"job_max_salary"`
	ApplyLink     string   `json:"job_apply_link"`
	Description   string   `json:"job_description"`
	PostedAtUnix  int64    `json:"job_posted_at_timestamp"`
}

type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Record, error)
}

type jsearchClient struct {
	apiURL  string
	apiKey  string
	apiHost string
	client  *http.Client
	logger  *log.Logger
}

func NewJSearchClient(cfg config.UpstreamConfig, logger *log.Logger) Client {
	return &jsearchClient{
		apiURL:  strings.TrimSpace(cfg.APIURL),
		apiKey:  cfg.APIKey,
		apiHost: cfg.APIHost,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type searchResponse struct {
	Data *[]Record `json:"data"`
}

func (c *jsearchClient) Search(ctx context.Context, sreq SearchRequest) ([]Record, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil provider client")
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, err
	}
	q := endpoint.Query()
	q.Set("query", sreq.Query)
	q.Set("page", sreq.Page)
	q.Set("num_pages", sreq.NumPages)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	if c.logger != nil {
		c.logger.Printf("[Provider] Search query=%q page=%s num_pages=%s", sreq.Query, sreq.Page, sreq.NumPages)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		body := strings.TrimSpace(string(rb))
		if c.logger != nil {
			c.logger.Printf("[Provider] Search error status=%d body=%q", resp.StatusCode, body)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var out searchResponse
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Data == nil {
		return nil, ErrMalformedResponse
	}

	return *out.Data, nil
}

var _ Client = (*jsearchClient)(nil)
