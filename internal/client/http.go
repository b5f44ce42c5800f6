package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
)

// HTTPClient implements LoomClient using the loom HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Element CRUD ---

func (c *HTTPClient) CreateElement(ctx context.Context, req *CreateElementRequest) (*model.Element, error) {
	var el model.Element
	if err := c.doJSON(ctx, http.MethodPost, "/v1/elements", req, &el); err != nil {
		return nil, err
	}
	return &el, nil
}

func (c *HTTPClient) GetElement(ctx context.Context, id string) (*model.Element, error) {
	var el model.Element
	if err := c.doJSON(ctx, http.MethodGet, "/v1/elements/"+url.PathEscape(id), nil, &el); err != nil {
		return nil, err
	}
	return &el, nil
}

func (c *HTTPClient) ListElements(ctx context.Context, req *ListElementsRequest) (*ListElementsResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Type) > 0 {
		q.Set("type", strings.Join(req.Type, ","))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/v1/elements"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListElementsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SetStatus(ctx context.Context, id, status, actor string) (*model.Element, error) {
	body := map[string]string{"status": status}
	if actor != "" {
		body["actor"] = actor
	}
	var el model.Element
	if err := c.doJSON(ctx, http.MethodPost, "/v1/elements/"+url.PathEscape(id)+"/status", body, &el); err != nil {
		return nil, err
	}
	return &el, nil
}

func (c *HTTPClient) DeleteElement(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/elements/"+url.PathEscape(id), nil, nil)
}

// --- Dependencies ---

func (c *HTTPClient) AddDependency(ctx context.Context, req *AddDependencyRequest) (*model.Dependency, error) {
	var dep model.Dependency
	path := "/v1/elements/" + url.PathEscape(req.TargetID) + "/dependencies"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (c *HTTPClient) RemoveDependency(ctx context.Context, targetID, sourceID, depType string) error {
	q := url.Values{}
	q.Set("source_id", sourceID)
	q.Set("type", depType)
	path := "/v1/elements/" + url.PathEscape(targetID) + "/dependencies?" + q.Encode()
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) GetDependencies(ctx context.Context, id string) (*DependenciesResponse, error) {
	var resp DependenciesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/elements/"+url.PathEscape(id)+"/dependencies", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) AreRelated(ctx context.Context, a, b string) (bool, error) {
	var resp struct {
		Related bool `json:"related"`
	}
	path := "/v1/elements/" + url.PathEscape(a) + "/related/" + url.PathEscape(b)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Related, nil
}

// --- Derived views ---

func (c *HTTPClient) GetReadiness(ctx context.Context, id string) (*graph.Readiness, error) {
	var r graph.Readiness
	if err := c.doJSON(ctx, http.MethodGet, "/v1/elements/"+url.PathEscape(id)+"/readiness", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) GetTree(ctx context.Context, id string, depth int) (*graph.Tree, error) {
	path := "/v1/elements/" + url.PathEscape(id) + "/tree"
	if depth > 0 {
		path += "?depth=" + strconv.Itoa(depth)
	}
	var t graph.Tree
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ListReady(ctx context.Context, limit int) ([]*model.Element, error) {
	path := "/v1/ready"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Elements []*model.Element `json:"elements"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (c *HTTPClient) ListBlocked(ctx context.Context, limit int) ([]*graph.BlockedElement, error) {
	path := "/v1/blocked"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Elements []*graph.BlockedElement `json:"elements"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (c *HTTPClient) GetGraph(ctx context.Context, limit int) (*model.GraphResponse, error) {
	path := "/v1/graph"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var g model.GraphResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *HTTPClient) GetStats(ctx context.Context) (*model.GraphStats, error) {
	var stats model.GraphStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Gates ---

func (c *HTTPClient) SatisfyGate(ctx context.Context, targetID, sourceID, actor string) (*model.Dependency, error) {
	body := map[string]string{"source_id": sourceID}
	if actor != "" {
		body["actor"] = actor
	}
	var dep model.Dependency
	path := "/v1/elements/" + url.PathEscape(targetID) + "/gate/satisfy"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (c *HTTPClient) RecordApproval(ctx context.Context, targetID, sourceID, approver string) (*ApprovalResponse, error) {
	body := map[string]string{"source_id": sourceID, "approver": approver}
	var resp ApprovalResponse
	path := "/v1/elements/" + url.PathEscape(targetID) + "/gate/approve"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Events ---

func (c *HTTPClient) GetEvents(ctx context.Context, id string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/elements/"+url.PathEscape(id)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
