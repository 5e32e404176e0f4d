package spool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client talks to the Spool API over HTTP with bearer-token auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a client for the given endpoint. A non-positive
// timeout falls back to the default; the timeout bounds each remote call
// end to end.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// TestConnection performs a shallow list call, used by health checks.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.ListCollections(ctx)
	return err
}

// ListCollections returns every collection visible to the credential.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/collections", nil)
	if err != nil {
		return nil, err
	}
	var out []Collection
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return out, nil
}

// CreateCollection creates a named collection and returns it.
func (c *Client) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	body := map[string]string{"name": name}
	raw, err := c.do(ctx, http.MethodPost, "/v1/collections", body)
	if err != nil {
		return nil, err
	}
	var out Collection
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return &out, nil
}

// GetCollection fetches one collection by id.
func (c *Client) GetCollection(ctx context.Context, id string) (*Collection, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/collections/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var out Collection
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return &out, nil
}

// CollectionStats returns the server-computed stats document unchanged.
func (c *Client) CollectionStats(ctx context.Context, id string) (map[string]interface{}, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/collections/"+url.PathEscape(id)+"/stats", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return out, nil
}

// ListFiles returns the files of a collection with their indexing status.
func (c *Client) ListFiles(ctx context.Context, id string) ([]File, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/collections/"+url.PathEscape(id)+"/files", nil)
	if err != nil {
		return nil, err
	}
	var out []File
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return out, nil
}

// AddFiles submits documents for indexing and returns the created file
// records in submission order.
func (c *Client) AddFiles(ctx context.Context, id string, files []FileToAdd) ([]File, error) {
	body := map[string]interface{}{"files": files}
	raw, err := c.do(ctx, http.MethodPost, "/v1/collections/"+url.PathEscape(id)+"/files", body)
	if err != nil {
		return nil, err
	}
	var out []File
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return out, nil
}

// Search runs a semantic query against one collection.
func (c *Client) Search(ctx context.Context, id, text string) ([]Match, error) {
	body := map[string]string{"text": text}
	raw, err := c.do(ctx, http.MethodPost, "/v1/collections/"+url.PathEscape(id)+"/search", body)
	if err != nil {
		return nil, err
	}
	var out []Match
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spool request: %w", err)
	}
	defer resp.Body.Close()

	return decodeBody(resp.Body, resp.StatusCode)
}

// decodeBody unwraps the {"result": ...} envelope. Non-2xx statuses
// become *Error carrying the API's message.
func decodeBody(r io.Reader, status int) (json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if status >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, &Error{StatusCode: status, Message: msg}
	}

	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Result == nil {
		return nil, fmt.Errorf("response missing result field")
	}
	return env.Result, nil
}
