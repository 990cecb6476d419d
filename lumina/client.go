package lumina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Record is a model instance as the backend sees it: a flat field mapping.
type Record map[string]any

// QueryResponse carries one page of records plus the pagination metadata
// extracted from the response headers (nil when the backend sent none).
type QueryResponse struct {
	Data       []Record
	Pagination *PaginationMeta
}

// Session is the result of a successful login or invitation acceptance.
type Session struct {
	Token string `json:"token"`
	User  Record `json:"user"`
}

// Config configures a Client. Only BaseURL is required.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.example.com".
	BaseURL string

	// Token seeds the TokenStore with a bearer token. Login and
	// AcceptInvitation overwrite it with the session token they receive.
	Token string

	// HTTPClient is the underlying transport. Defaults to a plain
	// http.Client; replace it to add timeouts or instrumentation.
	HTTPClient *http.Client

	// TokenStore persists the bearer token. Defaults to an in-memory store.
	TokenStore TokenStore

	// OnInvalidate is called once per distinct model name after every
	// successful mutation, including batches.
	OnInvalidate InvalidationFunc

	// Retry, when set, wraps the transport with exponential backoff for
	// GET requests. Mutations are never retried.
	Retry *RetryPolicy

	// Logger receives debug-level request logs. Defaults to a discarded
	// slog handler.
	Logger *slog.Logger
}

// Client talks to a Lumina-style backend. All methods are safe for
// concurrent use; independent calls carry no ordering guarantee.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenStore
	onInvalidate InvalidationFunc
	logger       *slog.Logger
}

// New creates a Client from cfg. A missing BaseURL is a ConfigurationError.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, newConfigurationError("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Retry != nil {
		wrapped := *httpClient
		wrapped.Transport = newRetryTransport(httpClient.Transport, *cfg.Retry)
		httpClient = &wrapped
	}

	tokens := cfg.TokenStore
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	if cfg.Token != "" {
		tokens.Set(TokenKey, cfg.Token)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		tokens:       tokens,
		onInvalidate: cfg.OnInvalidate,
		logger:       logger,
	}, nil
}

// Model returns a handle for CRUD operations on the named model.
func (c *Client) Model(name string) *ModelClient {
	return &ModelClient{client: c, name: name}
}

// Login authenticates against the tenant-less login endpoint and stores the
// returned bearer token for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	_, err := c.do(ctx, http.MethodPost, "/login", Record{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	c.tokens.Set(TokenKey, session.Token)
	return &session, nil
}

// AcceptInvitation redeems an invitation token on the tenant-less accept
// endpoint, creating the invited user, and stores the session token.
func (c *Client) AcceptInvitation(ctx context.Context, token string, data Record) (*Session, error) {
	body := Record{"token": token}
	for k, v := range data {
		body[k] = v
	}
	var session Session
	_, err := c.do(ctx, http.MethodPost, "/invitations/accept", body, &session)
	if err != nil {
		return nil, err
	}
	c.tokens.Set(TokenKey, session.Token)
	return &session, nil
}

// Logout discards the stored bearer token. Purely client-side.
func (c *Client) Logout() {
	c.tokens.Remove(TokenKey)
}

// Operations submits ops as one atomic batch. The whole batch is validated
// locally first: malformed shapes and forward or self references fail here
// and nothing is sent. Reference tokens travel to the backend as literal
// strings; results come back in submission order, and on any failure the
// backend guarantees zero side effects. After success each distinct model
// in the batch is marked for cache invalidation exactly once.
func (c *Client) Operations(ctx context.Context, tenant string, ops []Operation) ([]Record, error) {
	if strings.TrimSpace(tenant) == "" {
		return nil, newConfigurationError("tenant identifier is required")
	}
	if err := ValidateOperations(ops); err != nil {
		return nil, err
	}

	path := "/" + tenant + "/nested-operations"
	var results []Record
	_, err := c.do(ctx, http.MethodPost, path, map[string]any{"operations": ops}, &results)
	if err != nil {
		return nil, err
	}

	for _, model := range touchedModels(ops) {
		c.invalidate(model)
	}
	return results, nil
}

func (c *Client) invalidate(model string) {
	if c.onInvalidate != nil {
		c.onInvalidate(model)
	}
}

// apiError is the backend's error body.
type apiError struct {
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

// categoryTransactionFailed is how the backend reports a batch that could
// not complete atomically.
const categoryTransactionFailed = "TRANSACTION_FAILED"

// do executes one request and decodes a 2xx JSON body into out (when out is
// non-nil). Non-2xx responses become TransportError, or TransactionError
// when the backend reports an atomicity failure.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Get(TokenKey); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response body: %w", err)
		}
	}
	return resp.Header, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body apiError
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = strings.TrimSpace(string(raw))
	}

	if body.Category == categoryTransactionFailed {
		return &TransactionError{Message: body.Message, CorrelationID: body.CorrelationID}
	}
	return &TransportError{
		StatusCode:    resp.StatusCode,
		Message:       body.Message,
		Category:      body.Category,
		CorrelationID: body.CorrelationID,
	}
}
