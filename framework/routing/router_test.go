package routing_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-laravel-db/framework/logger"
	"github.com/km-arc/go-laravel-db/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New(nil)
	r.Get("/users", okHandler)
	r.Post("/users", okHandler)
	r.Put("/users/{id}", okHandler)
	r.Patch("/users/{id}", okHandler)
	r.Delete("/users/{id}", okHandler)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodPost, "/users"},
		{http.MethodPut, "/users/1"},
		{http.MethodPatch, "/users/1"},
		{http.MethodDelete, "/users/1"},
	} {
		rr := do(t, r, tc.method, tc.path)
		assert.Equal(t, http.StatusOK, rr.Code, "%s %s", tc.method, tc.path)
	}

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodPut, "/users").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/missing").Code)
}

func TestRouter_Handle(t *testing.T) {
	r := routing.New(nil)
	r.Handle("/metrics", http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/metrics").Code)
}

// ── Groups, prefixes and params ───────────────────────────────────────────────

func TestRouter_PrefixAndParam(t *testing.T) {
	r := routing.New(nil)
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/models/{model}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(routing.Param(req, "model")))
		})
	})

	rr := do(t, r, http.MethodGet, "/api/v1/models/user")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user", rr.Body.String())
}

func TestRouter_GroupMiddleware(t *testing.T) {
	r := routing.New(nil)
	r.Get("/public", okHandler)
	r.Group(func(protected *routing.Router) {
		protected.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if req.Header.Get("Authorization") == "" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, req)
			})
		})
		protected.Get("/private", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/public").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/private").Code)
}

// ── Logging ──────────────────────────────────────────────────────────────────

func TestRouter_AccessLogAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := routing.New(logger.New(&buf, "test", false))
	r.Get("/hello", func(w http.ResponseWriter, req *http.Request) {
		logger.FromContext(req.Context()).Info().Msg("inside handler")
		okHandler(w, req)
	})

	rr := do(t, r, http.MethodGet, "/hello")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(routing.RequestIDHeader))

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"uri":"/hello"`)
	assert.Contains(t, out, `"request_id"`)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New(nil)
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/panic").Code)
}
