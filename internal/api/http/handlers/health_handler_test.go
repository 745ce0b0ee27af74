package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/discord"
)

func newHealthApp(t *testing.T, discordStatus int) *fiber.App {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(discordStatus)
	}))
	t.Cleanup(srv.Close)

	dc := discord.NewClient("tok", "app", zap.NewNop())
	dc.BaseURL = srv.URL

	handler := NewHealthHandler(dc, nil, zap.NewNop())
	app := fiber.New()
	app.Get("/health/live", handler.Live)
	app.Get("/health/ready", handler.Ready)
	return app
}

func TestLive(t *testing.T) {
	t.Parallel()

	app := newHealthApp(t, http.StatusOK)
	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	app := newHealthApp(t, http.StatusOK)
	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestReadyDiscordDown(t *testing.T) {
	t.Parallel()

	app := newHealthApp(t, http.StatusBadGateway)
	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
