package lumina

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures the last request and replays a canned response.
type recordingHandler struct {
	method  string
	path    string
	query   string
	body    []byte
	headers http.Header

	status       int
	responseBody string
	respHeaders  map[string]string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.headers = r.Header.Clone()
	h.body, _ = io.ReadAll(r.Body)

	for k, v := range h.respHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = w.Write([]byte(h.responseBody))
}

func newTestClient(t *testing.T, h *recordingHandler, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestClientListExtractsHeaderPagination(t *testing.T) {
	h := &recordingHandler{
		status:       http.StatusOK,
		responseBody: `[{"id":"1","title":"hello"}]`,
		respHeaders: map[string]string{
			"Current-Page": "1",
			"Last-Page":    "4",
			"Per-Page":     "15",
			"Total":        "60",
		},
	}
	c := newTestClient(t, h, Config{})

	resp, err := c.Model("posts").List(context.Background(), "acme", QueryOptions{
		Filters: []Filter{{Field: "status", Value: "published"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/acme/posts", h.path)
	assert.Equal(t, "filter[status]=published", h.query)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "hello", resp.Data[0]["title"])
	assert.Equal(t, &PaginationMeta{CurrentPage: 1, LastPage: 4, PerPage: 15, Total: 60}, resp.Pagination)
}

func TestClientListWithoutPaginationHeaders(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[]`}
	c := newTestClient(t, h, Config{})

	resp, err := c.Model("posts").List(context.Background(), "acme", QueryOptions{})
	require.NoError(t, err)
	assert.Nil(t, resp.Pagination)
	assert.Empty(t, resp.Data)
}

func TestClientTrashedPath(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[]`}
	c := newTestClient(t, h, Config{})

	_, err := c.Model("posts").Trashed(context.Background(), "acme", QueryOptions{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, "/acme/posts/trashed", h.path)
	assert.Equal(t, "page=2", h.query)
}

func TestClientUpdateDoesNotDuplicateID(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `{"id":"42"}`}
	c := newTestClient(t, h, Config{})

	_, err := c.Model("posts").Update(context.Background(), "acme", "42", Record{"title": "new"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, h.method)
	assert.Equal(t, "/acme/posts/42", h.path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(h.body, &sent))
	assert.Equal(t, map[string]any{"title": "new"}, sent)
}

func TestClientLifecyclePaths(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `{"id":"7"}`}
	c := newTestClient(t, h, Config{})
	ctx := context.Background()
	posts := c.Model("posts")

	require.NoError(t, posts.Delete(ctx, "acme", "7"))
	assert.Equal(t, http.MethodDelete, h.method)
	assert.Equal(t, "/acme/posts/7", h.path)

	_, err := posts.Restore(ctx, "acme", "7")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, h.method)
	assert.Equal(t, "/acme/posts/7/restore", h.path)

	require.NoError(t, posts.ForceDelete(ctx, "acme", "7"))
	assert.Equal(t, http.MethodDelete, h.method)
	assert.Equal(t, "/acme/posts/7/force-delete", h.path)
}

func TestClientAuditPath(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[]`}
	c := newTestClient(t, h, Config{})

	_, err := c.Model("posts").Audit(context.Background(), "acme", "7", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "/acme/posts/7/audit", h.path)
	assert.Equal(t, "page=2&per_page=10", h.query)
}

func TestClientCreateInvalidatesModel(t *testing.T) {
	h := &recordingHandler{status: http.StatusCreated, responseBody: `{"id":"1"}`}
	var invalidated []string
	c := newTestClient(t, h, Config{
		OnInvalidate: func(model string) { invalidated = append(invalidated, model) },
	})

	_, err := c.Model("posts").Create(context.Background(), "acme", Record{"title": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"posts"}, invalidated)
}

func TestClientOperationsInvalidatesOncePerModel(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[{"id":"1"},{"id":"2"},{"id":"3"}]`}
	var invalidated []string
	c := newTestClient(t, h, Config{
		OnInvalidate: func(model string) { invalidated = append(invalidated, model) },
	})

	results, err := c.Operations(context.Background(), "acme", []Operation{
		{Action: ActionCreate, Model: "blogs", Data: Record{"title": "B"}},
		{Action: ActionCreate, Model: "posts", Data: Record{"blog_id": "$0.id"}},
		{Action: ActionUpdate, Model: "blogs", ID: "$0.id", Data: Record{"title": "B2"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "/acme/nested-operations", h.path)
	assert.Equal(t, []string{"blogs", "posts"}, invalidated)

	// The payload keeps reference tokens as literal strings.
	var sent struct {
		Operations []map[string]any `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(h.body, &sent))
	require.Len(t, sent.Operations, 3)
	data := sent.Operations[1]["data"].(map[string]any)
	assert.Equal(t, "$0.id", data["blog_id"])
}

func TestClientOperationsValidationSkipsNetwork(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[]`}
	c := newTestClient(t, h, Config{})

	_, err := c.Operations(context.Background(), "acme", []Operation{
		{Action: ActionCreate, Model: "a", Data: Record{"x": "$1.id"}},
		{Action: ActionCreate, Model: "b", Data: Record{}},
	})
	var refErr *InvalidReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Empty(t, h.method, "invalid batch must never reach the transport")
}

func TestClientOperationsTransactionFailure(t *testing.T) {
	h := &recordingHandler{
		status:       http.StatusUnprocessableEntity,
		responseBody: `{"message":"operation 1 failed","category":"TRANSACTION_FAILED","correlationId":"abc"}`,
	}
	var invalidated []string
	c := newTestClient(t, h, Config{
		OnInvalidate: func(model string) { invalidated = append(invalidated, model) },
	})

	_, err := c.Operations(context.Background(), "acme", []Operation{
		{Action: ActionCreate, Model: "blogs", Data: Record{"title": "B"}},
	})
	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "operation 1 failed", txErr.Message)
	assert.Empty(t, invalidated, "failed batch must not invalidate anything")
}

func TestClientTransportError(t *testing.T) {
	h := &recordingHandler{
		status:       http.StatusNotFound,
		responseBody: `{"message":"record not found","category":"NOT_FOUND","correlationId":"xyz"}`,
	}
	c := newTestClient(t, h, Config{})

	_, err := c.Model("posts").Get(context.Background(), "acme", "nope", QueryOptions{})
	var trErr *TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, http.StatusNotFound, trErr.StatusCode)
	assert.Equal(t, "record not found", trErr.Message)
	assert.Equal(t, "NOT_FOUND", trErr.Category)
}

func TestClientLoginStoresToken(t *testing.T) {
	h := &recordingHandler{
		status:       http.StatusOK,
		responseBody: `{"token":"session-token","user":{"id":"u1","email":"ada@acme.test"}}`,
	}
	store := NewMemoryTokenStore()
	c := newTestClient(t, h, Config{TokenStore: store})

	session, err := c.Login(context.Background(), "ada@acme.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "/login", h.path)
	assert.Equal(t, "session-token", session.Token)

	token, ok := store.Get(TokenKey)
	require.True(t, ok)
	assert.Equal(t, "session-token", token)

	c.Logout()
	_, ok = store.Get(TokenKey)
	assert.False(t, ok)
}

func TestClientSendsBearerToken(t *testing.T) {
	h := &recordingHandler{status: http.StatusOK, responseBody: `[]`}
	c := newTestClient(t, h, Config{Token: "static-token"})

	_, err := c.Model("posts").List(context.Background(), "acme", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer static-token", h.headers.Get("Authorization"))
}

func TestClientAcceptInvitation(t *testing.T) {
	h := &recordingHandler{
		status:       http.StatusCreated,
		responseBody: `{"token":"invited-token","user":{"id":"u2"}}`,
	}
	store := NewMemoryTokenStore()
	c := newTestClient(t, h, Config{TokenStore: store})

	_, err := c.AcceptInvitation(context.Background(), "welcome", Record{"password": "pw", "name": "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "/invitations/accept", h.path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(h.body, &sent))
	assert.Equal(t, "welcome", sent["token"])
	assert.Equal(t, "Grace", sent["name"])

	token, ok := store.Get(TokenKey)
	require.True(t, ok)
	assert.Equal(t, "invited-token", token)
}
