package client

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIKey = "SCRATCH_API_KEY"
	envAPIURL = "SCRATCH_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// resolveCredentials walks flag, env, saved config and default for the key
// and the URL independently. A missing key is not an error so callers can
// tell a signed-out user apart from a broken config.
func resolveCredentials(cmd *cobra.Command) (apiKey, baseURL string, err error) {
	_ = godotenv.Load()

	var flagKey, flagURL string
	if cmd != nil {
		flagKey, _ = cmd.Flags().GetString("api-key")
		flagURL, _ = cmd.Flags().GetString("api-url")
	}
	apiKey = cmp.Or(flagKey, os.Getenv(envAPIKey))
	baseURL = cmp.Or(flagURL, os.Getenv(envAPIURL))

	if apiKey == "" || baseURL == "" {
		saved, err := LoadGlobalConfig()
		if err != nil {
			return "", "", err
		}
		if saved != nil {
			apiKey = cmp.Or(apiKey, saved.APIKey)
			baseURL = cmp.Or(baseURL, saved.APIURL)
		}
	}

	return apiKey, cmp.Or(baseURL, defaultAPIURL), nil
}

// NewAPIClientWithConfig creates an APIClient with explicit config.
func NewAPIClientWithConfig(apiKey, baseURL string) (*APIClient, error) {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// HasCredentials reports whether the client carries an API key.
func (c *APIClient) HasCredentials() bool {
	return c.apiKey != ""
}

// BaseURL returns the API base URL without a trailing slash.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the backend answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Get performs a GET request.
func (c *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with JSON body.
func (c *APIClient) Put(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return decodeEnvelope(resp.StatusCode, raw)
}

// decodeEnvelope turns a {"data"} / {"error"} body into a response or an
// *APIError. Error bodies that are not JSON become the error message as is.
func decodeEnvelope(status int, raw []byte) (*APIResponse, error) {
	failed := status >= http.StatusBadRequest
	raw = bytes.TrimSpace(raw)

	var envelope APIResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			if failed {
				return nil, &APIError{StatusCode: status, Message: string(raw)}
			}
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if failed {
		return nil, &APIError{StatusCode: status, Message: cmp.Or(envelope.Error, http.StatusText(status))}
	}
	return &envelope, nil
}
