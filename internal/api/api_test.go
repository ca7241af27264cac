package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/userdata-go/internal/api"
	"github.com/mcoot/userdata-go/internal/api/apierr"
	"github.com/mcoot/userdata-go/internal/api/response"
	"github.com/mcoot/userdata-go/internal/factory"
	"github.com/mcoot/userdata-go/internal/services/link"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := factory.NewTestApp(link.Config{
		GameURL:         "http://game.example/",
		DefaultUserdata: "https://userdata.example",
		LocalUserdata:   "http://game.example/userdata",
		AllowLocal:      true,
		AllowOther:      true,
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		LinkService: app.LinkService,
		Broadcaster: app.Broadcaster,
		APIKey:      apiKey,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) openLink(t *testing.T, gcid string) {
	t.Helper()
	ts.app.MockRandom.QueueString(gcid, "dcid-"+gcid)
	_, _, err := ts.app.LinkService.Open(t.Context(), false)
	require.NoError(t, err)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestConnectExternalPlayer(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")

	body := map[string]any{"name": "Alice", "managed": nil, "language": "nl"}
	rr := ts.request(http.MethodPost, "/api/v1/links/g1/connect", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ConnectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "g1", resp.GCID)
	assert.Equal(t, "Alice", resp.Name)
	assert.Nil(t, resp.Managed)
	assert.Equal(t, "Ingelogd als Alice (extern)", resp.Title)

	rr = ts.request(http.MethodGet, "/api/v1/links/g1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got response.Link
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "active", got.State)
	assert.NotNil(t, got.ActivatedAt)
	assert.NotContains(t, rr.Body.String(), "dcid-g1")
}

func TestConnectManagedPlayer(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")

	body := map[string]any{"name": "Alice", "managed": "alice"}
	rr := ts.request(http.MethodPost, "/api/v1/links/g1/connect", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ConnectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Managed)
	assert.Equal(t, "alice", *resp.Managed)
	assert.Equal(t, "Logged in as Alice (login name: alice)", resp.Title)
}

func TestConnectErrors(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")

	rr := ts.request(http.MethodPost, "/api/v1/links/missing/connect", map[string]string{"name": "Alice"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeLinkNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/links/g1/connect", map[string]string{"name": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeEmptyPlayerName, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/links/g1/connect", map[string]string{"name": "Alice"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/links/g1/connect", map[string]string{"name": "Bob"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeLinkActive, decodeError(t, rr).Code)
}

func TestConnectInvalidBody(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/links/g1/connect", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestLogoutReturnsSetupArguments(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")
	ts.app.MockRandom.QueueString("g2", "d2")

	rr := ts.request(http.MethodPost, "/api/v1/links/g1/logout", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		GCID  string            `json:"gcid"`
		Setup []json.RawMessage `json:"setup"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "g2", resp.GCID)
	require.Len(t, resp.Setup, 5)
	assert.JSONEq(t, `"g2"`, string(resp.Setup[3]))
	assert.JSONEq(t, `"d2"`, string(resp.Setup[4]))
	assert.Contains(t, string(resp.Setup[2]), `"logout":true`)

	rr = ts.request(http.MethodGet, "/api/v1/links/g1", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteLink(t *testing.T) {
	ts := newTestServer(t, "")
	ts.openLink(t, "g1")

	rr := ts.request(http.MethodDelete, "/api/v1/links/g1", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/links/g1", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/links/g1", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t, "s3cret")
	ts.openLink(t, "g1")

	rr := ts.request(http.MethodGet, "/api/v1/links/g1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/links/g1", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/links/g1", nil, "s3cret")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Health stays public
	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
