package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"teamcal-backend/internal/models"
)

// ActivityAPI is the slice of the D4H Team Manager API the sync consumes.
type ActivityAPI interface {
	WhoAmI(ctx context.Context) (map[string]any, error)
	GetEvents(ctx context.Context, scope models.Scope, opts FetchOptions) ([]map[string]any, error)
	GetExercises(ctx context.Context, scope models.Scope, opts FetchOptions) ([]map[string]any, error)
}

// FetchOptions narrow a collection fetch. Empty fields are omitted from the
// query string.
type FetchOptions struct {
	StartsAfter string
	EndsBefore  string
}

// D4HClient calls the D4H Team Manager v3 API. HTTP only, no DB writes.
type D4HClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
}

func NewD4HClient(baseURL, token string, pageSize int) *D4HClient {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &D4HClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageSize:   pageSize,
	}
}

// WhoAmI returns the current identity object. Used when no context is stored.
func (c *D4HClient) WhoAmI(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, c.baseURL+"/v3/whoami")
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode whoami response: %w", err)
	}
	return out, nil
}

// GetEvents fetches every page of the events collection for the scope.
func (c *D4HClient) GetEvents(ctx context.Context, scope models.Scope, opts FetchOptions) ([]map[string]any, error) {
	path := fmt.Sprintf("/v3/%s/%s/events", url.PathEscape(scope.Kind), url.PathEscape(scope.ID))
	return c.fetchPaginated(ctx, path, opts)
}

// GetExercises fetches every page of the exercises collection for the scope.
func (c *D4HClient) GetExercises(ctx context.Context, scope models.Scope, opts FetchOptions) ([]map[string]any, error) {
	path := fmt.Sprintf("/v3/%s/%s/exercises", url.PathEscape(scope.Kind), url.PathEscape(scope.ID))
	return c.fetchPaginated(ctx, path, opts)
}

type pagedResponse struct {
	Results []map[string]any `json:"results"`
	Total   int              `json:"total"`
}

func (c *D4HClient) fetchPaginated(ctx context.Context, path string, opts FetchOptions) ([]map[string]any, error) {
	page := 0
	size := c.pageSize
	var merged []map[string]any

	for {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("size", strconv.Itoa(size))
		if opts.StartsAfter != "" {
			params.Set("starts_after", opts.StartsAfter)
		}
		if opts.EndsBefore != "" {
			params.Set("ends_before", opts.EndsBefore)
		}

		body, err := c.get(ctx, c.baseURL+path+"?"+params.Encode())
		if err != nil {
			return nil, err
		}

		var resp pagedResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode page %d of %s: %w", page, path, err)
		}

		merged = append(merged, resp.Results...)
		page++

		// A short page ends the loop. The server-reported total also bounds
		// it, except total 0 which means "unknown".
		hasMore := len(resp.Results) == size && (len(merged) < resp.Total || resp.Total == 0)
		if !hasMore {
			break
		}
	}

	return merged, nil
}

func (c *D4HClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
