package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gohttp "github.com/km-arc/go-laravel-db/framework/http"
	"github.com/km-arc/go-laravel-db/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q want application/json", ct)
	}
	if m := decodeJSON(t, rr); m["key"] != "val" {
		t.Errorf("body key: got %v want val", m["key"])
	}
}

func TestResponse_SuccessAndCreated(t *testing.T) {
	res, rr := newResponse(t)
	res.Success([]string{"user"})
	if rr.Code != http.StatusOK {
		t.Errorf("Success status: got %d", rr.Code)
	}
	if data, ok := decodeJSON(t, rr)["data"].([]any); !ok || len(data) != 1 {
		t.Errorf("Success data: got %v", data)
	}

	res, rr = newResponse(t)
	res.Created(map[string]any{"id": float64(1)})
	if rr.Code != http.StatusCreated {
		t.Errorf("Created status: got %d", rr.Code)
	}
	data, _ := decodeJSON(t, rr)["data"].(map[string]any)
	if data["id"] != float64(1) {
		t.Errorf("Created data: got %v", data)
	}
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestResponse_ErrorDefaults(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"error", func(r *gohttp.Response) { r.Error(http.StatusConflict, "Record already exists.") }, http.StatusConflict, "Record already exists."},
		{"not found", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "Not found."},
		{"not found custom", func(r *gohttp.Response) { r.NotFound("Unknown model.") }, http.StatusNotFound, "Unknown model."},
		{"server error", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
		{"unavailable", func(r *gohttp.Response) { r.ServiceUnavailable() }, http.StatusServiceUnavailable, "Service Unavailable."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			if rr.Code != tt.status {
				t.Errorf("status: got %d want %d", rr.Code, tt.status)
			}
			if m := decodeJSON(t, rr); m["message"] != tt.message {
				t.Errorf("message: got %v want %q", m["message"], tt.message)
			}
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{"take": "abc"}, validation.Rules{"take": "integer"})
	if !v.Fails() {
		t.Fatal("expected validation to fail")
	}

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d want 422", rr.Code)
	}
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	if !ok {
		t.Fatal("missing errors bag")
	}
	if _, ok := errs["take"]; !ok {
		t.Errorf("errors bag missing take: %v", errs)
	}
}
