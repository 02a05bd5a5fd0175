package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	resp := serve(HealthReady(cfg, map[string]Pinger{"db": ok, "redis": ok}, nil), newRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = serve(HealthReady(cfg, map[string]Pinger{"db": ok, "redis": down}, nil), newRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	resp := serve(HealthLive(cfg), newRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Storefront-Env") != "prod" {
		t.Fatalf("unexpected env header %q", resp.Header().Get("X-Storefront-Env"))
	}
}
