package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher defines the contract for any web search backend.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// SerperClient queries the Serper.dev Google Search API.
type SerperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Searcher = &SerperClient{}

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	Message string `json:"message,omitempty"`
}

func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		apiKey:  apiKey,
		baseURL: "https://google.serper.dev/search",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *SerperClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	reqBody := serperRequest{
		Query: query,
		Num:   limit,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp serperResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, limit)
	for _, hit := range searchResp.Organic {
		results = append(results, Result{
			Title:   hit.Title,
			Link:    hit.Link,
			Snippet: hit.Snippet,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
