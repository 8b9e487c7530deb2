package intake

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/orbit-landing/pkg/logging"
)

func newTestServer(t *testing.T, store Store) http.Handler {
	t.Helper()
	factory := func() *Wizard { return NewWizard(store) }
	sessions := NewSessionManager(factory, time.Minute)
	t.Cleanup(sessions.Close)

	h := NewHandler(sessions, factory, logging.New("error"))
	r := chi.NewRouter()
	r.Mount("/api/intake/sessions", h.Routes())
	r.Post("/api/waitlist", h.SubmitWaitlist)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, View) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var view View
	if rec.Code < 300 || rec.Code == http.StatusConflict && strings.Contains(rec.Body.String(), `"status"`) {
		_ = json.Unmarshal(rec.Body.Bytes(), &view)
	}
	return rec, view
}

func TestHandlerSessionFlow(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)

	rec, view := do(t, srv, http.MethodPost, "/api/intake/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, AtStep(0), view.State)
	assert.Len(t, view.Options.PainPoints, len(PainPoints()))
	base := "/api/intake/sessions/" + view.SessionID

	_, view = do(t, srv, http.MethodPost, base+"/next", "")
	assert.Equal(t, 0, view.Step, "gate holds without name and email")

	rec, _ = do(t, srv, http.MethodPatch, base+"/draft", `{"role":"CTO"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, view = do(t, srv, http.MethodPatch, base+"/draft", `{"full_name":"Jane Doe","email":"jane@acme.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, view.CanAdvance)

	_, view = do(t, srv, http.MethodPost, base+"/next", "")
	require.Equal(t, 1, view.Step)

	rec, _ = do(t, srv, http.MethodPatch, base+"/draft", `{"company_size":"huge"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, srv, http.MethodPatch, base+"/draft", `{"company_name":"Acme","company_size":"11-50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, view = do(t, srv, http.MethodPost, base+"/next", "")
	require.Equal(t, 2, view.Step)

	rec, view = do(t, srv, http.MethodPost, base+"/pain-points", `{"label":"Inventory Fragmentation"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, view.Draft.PainPoints.Has(PainInventoryFragmentation))

	rec, view = do(t, srv, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, KindSuccess, view.Kind)
	require.NotNil(t, view.Record)
	assert.Equal(t, "jane@acme.com", view.Record.Email)

	rec, _ = do(t, srv, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_submitted")
}

func TestHandlerUnknownSession(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	rec, _ := do(t, srv, http.MethodGet, "/api/intake/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerSubmitBeforeLastStep(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	_, view := do(t, srv, http.MethodPost, "/api/intake/sessions", "")
	rec, _ := do(t, srv, http.MethodPost, "/api/intake/sessions/"+view.SessionID+"/submit", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_submittable")
}

func TestSubmitWaitlistOneShot(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)

	payload := map[string]any{
		"full_name":    "Jane Doe",
		"email":        "jane@acme.com",
		"company_name": "Acme",
		"website":      "acme.com",
		"company_size": "11-50",
		"role":         "Founder",
		"pain_points":  []string{"Inventory Fragmentation"},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/waitlist", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	var view View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, FailureDuplicateEmail, view.Failure)
	assert.Equal(t, duplicateMessage, view.Message)
	assert.Equal(t, 1, store.count())
}

func TestSubmitWaitlistValidation(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing email", `{"full_name":"A"}`, http.StatusUnprocessableEntity},
		{"unknown pain point", `{"full_name":"A","email":"a@b.com","pain_points":["Nope"]}`, http.StatusUnprocessableEntity},
		{"unknown size", `{"full_name":"A","email":"a@b.com","company_size":"7"}`, http.StatusUnprocessableEntity},
		{"broken json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(t, srv, http.MethodPost, "/api/waitlist", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 0, store.inserts)
}

func TestSubmitWaitlistEmptyOptionals(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)

	rec, view := do(t, srv, http.MethodPost, "/api/waitlist",
		`{"full_name":"A","email":"a@b.com","company_name":"","website":"","company_size":"","role":"","pain_points":[]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, KindSuccess, view.Kind)
	assert.Equal(t, 1, store.count())
}

func TestSubmitWaitlistStoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = assert.AnError
	srv := newTestServer(t, store)

	rec, _ := do(t, srv, http.MethodPost, "/api/waitlist", `{"full_name":"A","email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), genericMessage)
}
