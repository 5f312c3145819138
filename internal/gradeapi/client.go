package gradeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the requested record no longer exists.
var ErrNotFound = errors.New("not found")

// APIError reports a non-404 error response from the backend.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
}

// StatusFetcher is the read side of the API used by the poller and the
// list refresher. It is implemented by *Client.
type StatusFetcher interface {
	FetchGenerationStatus(ctx context.Context, escolaID, gradeID string) (*GenerationStatus, error)
	ListGrades(ctx context.Context, escolaID string) ([]Grade, error)
}

var _ StatusFetcher = (*Client)(nil)

// Client talks to the Grade Horária HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	token     string
	userAgent string
}

const (
	defaultBaseURL   = "http://127.0.0.1:8080"
	defaultUserAgent = "gradewatch/0.1"
	defaultRateLimit = 5
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative
// disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchGenerationStatus retrieves the generation status of one grade.
func (c *Client) FetchGenerationStatus(ctx context.Context, escolaID, gradeID string) (*GenerationStatus, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(escolaID) == "" || strings.TrimSpace(gradeID) == "" {
		return nil, fmt.Errorf("escola id and grade id required")
	}
	path := "/api/escolas/" + url.PathEscape(escolaID) + "/grades/" + url.PathEscape(gradeID) + "/status"
	var payload GenerationStatus
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	payload.Status = ParseStatus(string(payload.Status))
	return &payload, nil
}

// ListGrades retrieves every grade of a school.
func (c *Client) ListGrades(ctx context.Context, escolaID string) ([]Grade, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(escolaID) == "" {
		return nil, fmt.Errorf("escola id required")
	}
	var payload GradeListResponse
	if err := c.do(ctx, http.MethodGet, "/api/escolas/"+url.PathEscape(escolaID)+"/grades", nil, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Items {
		payload.Items[i].Status = ParseStatus(string(payload.Items[i].Status))
		if payload.Items[i].EscolaID == "" {
			payload.Items[i].EscolaID = escolaID
		}
	}
	return payload.Items, nil
}

// RequestGeneration asks the backend to generate a new grade automatically.
// The returned grade is normally still pending.
func (c *Client) RequestGeneration(ctx context.Context, escolaID string, req GenerateRequest) (*Grade, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(escolaID) == "" {
		return nil, fmt.Errorf("escola id required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("grade name required")
	}
	var grade Grade
	if err := c.do(ctx, http.MethodPost, "/api/escolas/"+url.PathEscape(escolaID)+"/grades/gerar", req, &grade); err != nil {
		return nil, err
	}
	grade.Status = ParseStatus(string(grade.Status))
	if grade.Status == "" {
		grade.Status = StatusPending
	}
	if grade.EscolaID == "" {
		grade.EscolaID = escolaID
	}
	return &grade, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
