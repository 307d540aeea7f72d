package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	gohttp "github.com/km-arc/go-laravel-db/framework/http"
)

func TestRequest_BindJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ann","age":30}`))
	r.Header.Set("Content-Type", "application/json")

	var data map[string]any
	if err := gohttp.NewRequest(r).Bind(&data); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if data["name"] != "Ann" || data["age"] != float64(30) {
		t.Errorf("Bind: got %v", data)
	}
}

func TestRequest_BindErrors(t *testing.T) {
	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var v map[string]any
	if err := gohttp.NewRequest(empty).Bind(&v); err == nil {
		t.Error("expected error for empty body")
	}

	form := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Ann"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := gohttp.NewRequest(form).Bind(&v); !errors.Is(err, gohttp.ErrUnsupportedMediaType) {
		t.Errorf("expected ErrUnsupportedMediaType, got %v", err)
	}
}

func TestRequest_QueryAndHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?take=5", nil)
	r.Header.Set("X-Custom", "yes")
	req := gohttp.NewRequest(r)

	if got := req.Query("take"); got != "5" {
		t.Errorf("Query: got %q", got)
	}
	if got := req.Query("skip", "0"); got != "0" {
		t.Errorf("Query fallback: got %q", got)
	}
	if got := req.Header("X-Custom"); got != "yes" {
		t.Errorf("Header: got %q", got)
	}
	if req.Raw() != r {
		t.Error("Raw: returned a different request")
	}
}

func TestRequest_RouteParam(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("model", "user")
	r := httptest.NewRequest(http.MethodGet, "/models/user", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	if got := gohttp.NewRequest(r).RouteParam("model"); got != "user" {
		t.Errorf("RouteParam: got %q", got)
	}
}
