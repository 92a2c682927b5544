// API service for making raw authenticated requests to the Apple Music API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/shared"
)

// APIService performs raw GET requests and returns the response untouched, for exploring endpoints the
// [Catalog] does not model.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance.
//
// client is expected to authenticate its own requests; see [NewAuthenticatedAPIService].
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// NewAuthenticatedAPIService wraps base with an [oauth2.Transport] that resolves strategy on every request.
func NewAuthenticatedAPIService(ctx context.Context, baseURL string, strategy auth.Strategy, base *http.Client) *APIService {
	return NewAPIService(baseURL, strategy.HTTPClient(ctx, base))
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Get performs a GET request to the specified path and returns the raw response.
//
// Non-2xx statuses are not errors here; callers inspect StatusCode or pass the body to [Classify].
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL := a.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, &shared.Error{Kind: shared.KindParsing, Status: resp.StatusCode, Message: "response body exceeds 1 MiB"}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
