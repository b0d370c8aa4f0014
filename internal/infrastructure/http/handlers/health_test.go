package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ok(context.Context) error { return nil }

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := serve(t, NewHealthHandler().Liveness)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("unexpected liveness: %d %+v", rec.Code, body)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewReadinessHandler(Check{Name: "postgres", Ping: ok}, Check{Name: "redis", Ping: ok})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("unexpected readiness: %d %+v", rec.Code, body)
	}
	if body.Dependencies["postgres"].Status != "ok" || body.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected dependencies: %+v", body.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	h := NewReadinessHandler(Check{Name: "postgres", Ping: ok}, Check{Name: "redis", Ping: down})

	rec, body := serve(t, h.Readiness)
	if rec.Code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("unexpected readiness: %d %+v", rec.Code, body)
	}
	if dep := body.Dependencies["redis"]; dep.Status != "unhealthy" || dep.Error != "connection refused" {
		t.Fatalf("unexpected redis status: %+v", dep)
	}
}
