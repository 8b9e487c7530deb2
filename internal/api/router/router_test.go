package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/orbit-landing/internal/blob"
	"github.com/wolfman30/orbit-landing/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/orbit-landing/internal/http/middleware"
	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/internal/waitlist"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const testSecret = "router-secret"

func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) (http.Handler, *waitlist.InMemoryRepository) {
	t.Helper()

	logger := logging.New("error")
	repo := waitlist.NewInMemoryRepository()
	factory := func() *intake.Wizard { return intake.NewWizard(repo, intake.WithLogger(logger)) }
	sessions := intake.NewSessionManager(factory, time.Minute)
	t.Cleanup(sessions.Close)

	return New(&Config{
		Logger:        logger,
		Version:       "9.9.9",
		IntakeHandler: intake.NewHandler(sessions, factory, logger),
		AdminWaitlist: waitlist.NewHandler(repo, logger),
		Avatar:        handlers.NewAvatarHandler(handlers.AvatarConfig{Store: blob.NewMemoryStore(""), Logger: logger}),
		CSVHistory:    handlers.NewCSVHistoryHandler(nil, logger),
		SystemStatus:  handlers.NewSystemStatusHandler("9.9.9"),
		ServeExpenses: true,
		RateLimiter:   limiter,

		AdminAuthSecret:    testSecret,
		CORSAllowedOrigins: []string{"https://orbit.dev"},
	}), repo
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	rec := serve(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"9.9.9"}`, rec.Body.String())
}

func TestRouterEdgeEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rec := serve(r, http.MethodGet, "/api/finance/expenses", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/csv/upload-history?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/orbit/system-status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var status handlers.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.OK)
	assert.Equal(t, "9.9.9", status.Version)

	rec = serve(r, http.MethodPost, "/api/avatar/upload?filename=me.png", "image-bytes")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pathname":"avatars/me-`)
}

func TestRouterMethodNotAllowedIsJSON(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, target := range []string{"/api/avatar/upload?filename=me.png", "/api/waitlist"} {
		rec := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, target)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), target)
		assert.Equal(t, "method_not_allowed", body["error"])
		assert.NotEmpty(t, body["message"])
	}
}

func TestRouterWaitlistSubmitAndAdminList(t *testing.T) {
	r, repo := newTestRouter(t, nil)

	payload := `{"full_name":"Jane Doe","email":"jane@acme.com","company_size":"11-50","pain_points":["Returns Overhead"]}`
	rec := serve(r, http.MethodPost, "/api/waitlist", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, repo.Count())

	rec = serve(r, http.MethodPost, "/api/waitlist", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(r, http.MethodGet, "/admin/waitlist", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, httpmiddleware.AdminClaims{
		Role: httpmiddleware.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/waitlist", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list waitlist.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "jane@acme.com", list.Entries[0].Email)
}

func TestRouterRateLimitsPublicWrites(t *testing.T) {
	limiter := httpmiddleware.NewRateLimiter(0.001, 1)
	t.Cleanup(limiter.Close)
	r, _ := newTestRouter(t, limiter)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/intake/sessions", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/api/intake/sessions", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/finance/expenses", "").Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/waitlist", nil)
	req.Header.Set("Origin", "https://orbit.dev")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://orbit.dev", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterEdgeOnly(t *testing.T) {
	r := New(&Config{SystemStatus: handlers.NewSystemStatusHandler("1.0.0"), ServeExpenses: true})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/finance/expenses", "").Code)
	rec := serve(r, http.MethodPost, "/api/waitlist", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
