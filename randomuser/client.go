package randomuser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultEndpoint is the public random user API.
	DefaultEndpoint = "https://randomuser.me/api/"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// MaxResults is the largest batch the API serves in one request.
	MaxResults = 5000
)

// Config holds the client settings.
type Config struct {
	Endpoint      string   `mapstructure:"endpoint" yaml:"endpoint"`
	Seed          string   `mapstructure:"seed" yaml:"seed,omitempty"`
	Nationalities []string `mapstructure:"nationalities" yaml:"nationalities,omitempty"`
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// Client fetches generated users.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. It applies to a copy, so a client
// passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate fetches n users and returns each one as a raw JSON object.
func (c *Client) Generate(ctx context.Context, n int) ([][]byte, error) {
	if n <= 0 || n > MaxResults {
		return nil, fmt.Errorf("generate: %w: %d", ErrInvalidCount, n)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(n), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("generate: %w: invalid json", ErrMalformedResponse)
	}

	// The API reports some failures with a 200 and an error field.
	if apiErr := gjson.GetBytes(body, "error"); apiErr.Exists() {
		return nil, newAPIError(resp.StatusCode, []byte(apiErr.String()))
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("generate: %w: missing results", ErrMalformedResponse)
	}

	var records [][]byte
	results.ForEach(func(_, user gjson.Result) bool {
		records = append(records, []byte(user.Raw))
		return true
	})

	return records, nil
}

func (c *Client) requestURL(n int) string {
	q := url.Values{}
	q.Set("results", strconv.Itoa(n))
	if c.config.Seed != "" {
		q.Set("seed", c.config.Seed)
	}
	if len(c.config.Nationalities) > 0 {
		q.Set("nat", strings.Join(c.config.Nationalities, ","))
	}

	sep := "?"
	if strings.Contains(c.config.Endpoint, "?") {
		sep = "&"
	}
	return c.config.Endpoint + sep + q.Encode()
}
