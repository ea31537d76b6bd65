package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PlaceholderAPIKey is the value shipped in sample configs; it counts as unset.
const PlaceholderAPIKey = "your_omdb_api_key_here"

const probeTitle = "Inception"

type Client struct {
	log        *slog.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

/*
New creates a live OMDb client.

Every request is bounded by timeout; the caller's context can cut it shorter.
*/
func New(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return "omdb"
}

func (c *Client) configured() bool {
	return c.apiKey != "" && c.apiKey != PlaceholderAPIKey
}

// Ready reports ErrMissingAPIKey when no usable key is configured.
func (c *Client) Ready() error {
	if !c.configured() {
		return ErrMissingAPIKey
	}
	return nil
}

// APIKeyHint returns the first four characters of the key followed by ****.
func (c *Client) APIKeyHint() string {
	if !c.configured() {
		return ""
	}
	if len(c.apiKey) <= 4 {
		return "****"
	}
	return c.apiKey[:4] + "****"
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("s", req.Query)
	page := req.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if req.Year != "" {
		params.Set("y", req.Year)
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}
	var resp SearchResponse
	if err := c.get(ctx, params, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Title(ctx context.Context, id string) (*TitleResponse, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "full")
	var resp TitleResponse
	if err := c.get(ctx, params, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Probe fetches a well-known title to check connectivity and credentials.
func (c *Client) Probe(ctx context.Context) error {
	params := url.Values{}
	params.Set("t", probeTitle)
	var resp TitleResponse
	return c.get(ctx, params, &resp, &resp.envelope)
}

func (c *Client) get(ctx context.Context, params url.Values, dst any, env *envelope) error {
	const op = "omdb.Client.get"
	if !c.configured() {
		return ErrMissingAPIKey
	}
	log := c.log.With("op", op, "params", params.Encode())
	params.Set("apikey", c.apiKey)

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("%s: parsing base url: %w", op, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "errMsg", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	log.Debug("response received", "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	if env.failed() {
		return newProviderError(env.errorMessage())
	}
	return nil
}
