package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// APIError is the platform's error envelope for non-2xx responses.
type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Client talks to the Nimbus platform REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *logrus.Logger
	pageSize   int

	apiKey    string
	apiSecret string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	staticToken bool
}

type Option func(*Client)

// WithToken sets a static bearer token; no token endpoint is called.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
		c.staticToken = c.token != ""
	}
}

// WithCredentials sets the key/secret pair used to fetch bearer tokens.
func WithCredentials(key, secret string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
		c.apiSecret = strings.TrimSpace(secret)
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithPageSize sets the per_page value used by paginated list calls.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base URL: %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logrus.New(),
		pageSize:   200,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ensureToken lazily fetches or refreshes the bearer token. A static token
// is used as-is. Refresh happens when the cached token is within 30s of
// its expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staticToken {
		return c.token, nil
	}
	if c.token != "" && time.Until(c.tokenExpiry) > 30*time.Second {
		return c.token, nil
	}
	if c.apiKey == "" || c.apiSecret == "" {
		return "", errors.New("no credentials: set NIMBUS_TOKEN or NIMBUS_API_KEY/NIMBUS_API_SECRET")
	}

	body := map[string]string{"key": c.apiKey, "secret": c.apiSecret}
	var tok tokenResponse
	apiErr, err := c.doJSONRaw(ctx, http.MethodPost, "/api/v1/auth/token", nil, body, &tok, "")
	if err != nil {
		return "", errors.Wrap(err, "fetch token")
	}
	if apiErr != nil {
		return "", errors.Wrap(apiErr, "fetch token")
	}
	if strings.TrimSpace(tok.Token) == "" {
		return "", errors.New("token endpoint returned an empty token")
	}
	c.token = tok.Token
	c.tokenExpiry = tok.ExpiresAt
	return c.token, nil
}

// doJSON issues an authenticated JSON request. Non-2xx responses carrying the
// platform error envelope come back as *APIError; transport and decode
// problems come back as err.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody, out any) (*APIError, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.doJSONRaw(ctx, method, path, query, reqBody, out, token)
}

func (c *Client) doJSONRaw(ctx context.Context, method, path string, query url.Values, reqBody, out any, token string) (*APIError, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, errors.Wrap(err, "json marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.WithFields(logrus.Fields{"method": method, "url": u.String()}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "http do")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "http read")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && strings.TrimSpace(apiErr.Message) != "" {
			return &apiErr, nil
		}
		return nil, errors.Errorf("http status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil {
		return nil, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return nil, errors.Wrap(err, "json unmarshal response")
	}
	return nil, nil
}

// listPages walks an offset-paginated collection, appending each page via
// collect until a short page arrives.
func (c *Client) listPages(ctx context.Context, path string, query url.Values, collect func(raw json.RawMessage) (int, error)) error {
	if query == nil {
		query = url.Values{}
	}
	page := 1
	for {
		query.Set("page", fmt.Sprintf("%d", page))
		query.Set("per_page", fmt.Sprintf("%d", c.pageSize))

		var raw json.RawMessage
		apiErr, err := c.doJSON(ctx, http.MethodGet, path, query, nil, &raw)
		if err != nil {
			return err
		}
		if apiErr != nil {
			return apiErr
		}

		n, err := collect(raw)
		if err != nil {
			return err
		}
		if n < c.pageSize {
			return nil
		}
		page++
	}
}
