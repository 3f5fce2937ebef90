// Package chroma is an HTTP client for the Chroma similarity store.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu     sync.Mutex
	collectionID string
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ensureCollection resolves the collection id once, creating the collection
// when it does not exist yet.
func (c *Client) ensureCollection(ctx context.Context) (string, error) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()

	if c.collectionID != "" {
		return c.collectionID, nil
	}

	reqBody := map[string]any{
		"name":          c.collection,
		"get_or_create": true,
	}
	var response struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/v1/collections", reqBody, &response, "ensure collection"); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("chroma ensure collection: empty collection id")
	}
	c.collectionID = response.ID
	return c.collectionID, nil
}

func (c *Client) Add(ctx context.Context, id, text string, metadata map[string]any) error {
	collID, err := c.ensureCollection(ctx)
	if err != nil {
		return err
	}

	reqBody := map[string]any{
		"ids":       []string{id},
		"documents": []string{text},
		"metadatas": []map[string]any{metadata},
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", collID)
	return c.postJSON(ctx, path, reqBody, nil, "add")
}

func (c *Client) Query(ctx context.Context, text string, k int) ([]domain.SimilarityMatch, error) {
	collID, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"query_texts": []string{text},
		"n_results":   k,
		"include":     []string{"documents", "metadatas", "distances"},
	}
	var response struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", collID)
	if err := c.postJSON(ctx, path, reqBody, &response, "query"); err != nil {
		return nil, err
	}

	if len(response.Documents) == 0 {
		return nil, nil
	}

	docs := response.Documents[0]
	matches := make([]domain.SimilarityMatch, 0, len(docs))
	for i, doc := range docs {
		match := domain.SimilarityMatch{Text: doc}
		if len(response.Metadatas) > 0 && i < len(response.Metadatas[0]) {
			match.Meta = response.Metadatas[0][i]
		}
		if len(response.Distances) > 0 && i < len(response.Distances[0]) {
			dist := response.Distances[0][i]
			match.Distance = &dist
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// FileHashes lists the source file checksums already present in the
// collection, used to skip re-ingesting unchanged corpus files.
func (c *Client) FileHashes(ctx context.Context) (map[string]bool, error) {
	collID, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"include": []string{"metadatas"},
	}
	var response struct {
		Metadatas []map[string]any `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/get", collID)
	if err := c.postJSON(ctx, path, reqBody, &response, "get"); err != nil {
		return nil, err
	}

	hashes := make(map[string]bool, len(response.Metadatas))
	for _, meta := range response.Metadatas {
		if hash, ok := meta["file_hash"].(string); ok && hash != "" {
			hashes[hash] = true
		}
	}
	return hashes, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return formatChromaHTTPError(operation, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func formatChromaHTTPError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("chroma %s status: %s", operation, resp.Status)
	}
	return fmt.Errorf("chroma %s status: %s: %s", operation, resp.Status, msg)
}
