// Package geminiapi is the small REST client shared by the Gemini embedding
// and LLM adapters. Non-2xx responses surface as *googleapi.Error so callers
// classify failures by status code.
package geminiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// APIKeyEnv is the environment variable read when no key is configured.
const APIKeyEnv = "GEMINI_API_KEY"

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTimeout = 60 * time.Second
	apiVersion     = "v1beta"
)

// Config holds connection settings for the Generative Language API.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls <BaseURL>/v1beta/<path> with the key in x-goog-api-key.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Do sends in as the JSON body (nil sends none) and decodes the reply into
// out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+apiVersion+"/"+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ModelPath returns the resource name for a model ("models/<name>").
func ModelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// StatusCode extracts the HTTP status from a Google API error.
func StatusCode(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	return 0, false
}

func IsRateLimited(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusTooManyRequests
}

// IsServerError covers 5xx responses and request timeouts.
func IsServerError(err error) bool {
	code, ok := StatusCode(err)
	return ok && (code >= 500 || code == http.StatusRequestTimeout)
}

func IsBadRequest(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusBadRequest
}

// Part is one piece of a Content; only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// Content is a turn in a conversation or an embedding input.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}
