package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error taxonomy for hub lookups. Both propagate to the caller unmodified;
// there are no retries.
var (
	// ErrNotFound means the repo id does not resolve on the hub.
	ErrNotFound = errors.New("model not found")

	// ErrUnauthorized means the repo is gated or private and the caller's
	// credentials (if any) do not grant access.
	ErrUnauthorized = errors.New("model requires credentials")
)

// ModelInfo is the structured metadata the hub returns for a model.
// CardData is the pre-parsed key-value block from the card's front matter,
// kept loosely typed because authors put anything in it.
type ModelInfo struct {
	ID           string         `json:"id"`
	Author       string         `json:"author"`
	SHA          string         `json:"sha"`
	LastModified string         `json:"lastModified"`
	Downloads    int64          `json:"downloads"`
	Likes        int64          `json:"likes"`
	PipelineTag  string         `json:"pipeline_tag"`
	LibraryName  string         `json:"library_name"`
	Tags         []string       `json:"tags"`
	CardData     map[string]any `json:"cardData"`
}

// Client talks to the Hugging Face Hub HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	token      string
	maxBytes   int64
}

// NewClient creates a hub client. The token may be empty; it is only needed
// for gated or private repos.
func NewClient(endpoint string, timeout time.Duration, userAgent, token string, maxBytes int64) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		token:     token,
		maxBytes:  maxBytes,
	}
}

// ModelInfo fetches the structured metadata for a repo id.
func (c *Client) ModelInfo(ctx context.Context, repoID string) (*ModelInfo, error) {
	body, err := c.get(ctx, c.endpoint+"/api/models/"+repoID, repoID)
	if err != nil {
		return nil, err
	}

	var info ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode model info: %w", err)
	}
	if info.ID == "" {
		info.ID = repoID
	}
	return &info, nil
}

// ModelCard fetches the raw card Markdown (README.md on the main revision),
// front matter included.
func (c *Client) ModelCard(ctx context.Context, repoID string) (string, error) {
	body, err := c.get(ctx, c.endpoint+"/"+repoID+"/raw/main/README.md", repoID)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// get performs one GET round trip and maps status codes onto the error
// taxonomy. The response body is capped at maxBytes.
func (c *Client) get(ctx context.Context, url, repoID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", repoID, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", repoID, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
