package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aethex-api/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func whoami(c *fiber.Ctx) error {
	if c.Locals(LocalService) == true {
		return c.SendString("service")
	}
	return c.SendString(UserID(c))
}

func get(t *testing.T, app *fiber.App, path, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestUserContextMiddleware(t *testing.T) {
	v := services.NewAuthVerifier("secret")
	other := services.NewAuthVerifier("another-secret")
	good, _ := v.Issue("user-1", "u@example.com", time.Hour)
	expired, _ := v.Issue("user-1", "u@example.com", -time.Minute)
	forged, _ := other.Issue("user-1", "u@example.com", time.Hour)

	app := fiber.New()
	app.Get("/me", UserContextMiddleware(v, nil), whoami)

	tests := []struct {
		name   string
		auth   string
		status int
		body   string
	}{
		{"valid", "Bearer " + good, 200, "user-1"},
		{"lowercase scheme", "bearer " + good, 200, "user-1"},
		{"missing", "", 401, ""},
		{"no scheme", good, 401, ""},
		{"expired", "Bearer " + expired, 401, ""},
		{"wrong secret", "Bearer " + forged, 401, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, app, "/me", tt.auth)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if tt.body != "" && body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestOptionalUser(t *testing.T) {
	v := services.NewAuthVerifier("secret")
	good, _ := v.Issue("user-2", "", time.Hour)

	app := fiber.New()
	app.Get("/form", OptionalUser(v), whoami)

	if status, body := get(t, app, "/form", ""); status != 200 || body != "" {
		t.Errorf("anonymous = %d %q", status, body)
	}
	if status, body := get(t, app, "/form", "Bearer junk"); status != 200 || body != "" {
		t.Errorf("junk token = %d %q, want anonymous pass", status, body)
	}
	if status, body := get(t, app, "/form", "Bearer "+good); status != 200 || body != "user-2" {
		t.Errorf("signed in = %d %q", status, body)
	}
}

func TestServiceTokenOrUser(t *testing.T) {
	v := services.NewAuthVerifier("secret")
	good, _ := v.Issue("user-3", "", time.Hour)

	app := fiber.New()
	app.Get("/award", ServiceTokenOrUser("svc", v, nil), whoami)

	if _, body := get(t, app, "/award", "Bearer svc"); body != "service" {
		t.Errorf("service token body = %q", body)
	}
	if _, body := get(t, app, "/award", "Bearer "+good); body != "user-3" {
		t.Errorf("user token body = %q", body)
	}
	if status, _ := get(t, app, "/award", "Bearer nope"); status != 401 {
		t.Errorf("bad token status = %d, want 401", status)
	}

	// an unset service token must never match an empty bearer
	open := fiber.New()
	open.Get("/award", ServiceTokenOrUser("", v, nil), whoami)
	if status, _ := get(t, open, "/award", "Bearer "); status != 401 {
		t.Errorf("empty service token status = %d, want 401", status)
	}
}

func TestSSEAuthReadsQueryToken(t *testing.T) {
	v := services.NewAuthVerifier("secret")
	good, _ := v.Issue("user-4", "", time.Hour)

	app := fiber.New()
	app.Get("/stream", SSEAuthMiddleware(v, nil), whoami)

	if status, _ := get(t, app, "/stream", ""); status != 400 {
		t.Errorf("no token status = %d, want 400", status)
	}
	if status, body := get(t, app, "/stream?token="+good, ""); status != 200 || body != "user-4" {
		t.Errorf("query token = %d %q", status, body)
	}
	if status, _ := get(t, app, "/stream?token=bad", ""); status != 401 {
		t.Errorf("bad query token status = %d, want 401", status)
	}
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Get("/", NewRateLimiter(nil).Limit("forms", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	for i := 0; i < 3; i++ {
		if status, _ := get(t, app, "/", ""); status != 204 {
			t.Fatalf("request %d status = %d, want 204", i+1, status)
		}
	}
}

func limitedApp(t *testing.T, window time.Duration) (*fiber.App, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := fiber.New()
	app.Get("/", NewRateLimiter(client).Limit("forms", 5, window), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	return app, mr, client
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	app, mr, _ := limitedApp(t, 10*time.Minute)

	for i := 0; i < 5; i++ {
		if status, _ := get(t, app, "/", ""); status != 204 {
			t.Fatalf("request %d status = %d, want 204", i+1, status)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("6th request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("6th request status = %d, want 429", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderRetryAfter); got != "600" {
		t.Errorf("Retry-After = %q, want 600", got)
	}
	if !strings.Contains(string(body), "Too many requests") {
		t.Errorf("body = %s", body)
	}

	// the window closes and the counter starts over
	mr.FastForward(10 * time.Minute)
	if status, _ := get(t, app, "/", ""); status != 204 {
		t.Errorf("after window status = %d, want 204", status)
	}
}

func TestRateLimiterRestoresMissingTTL(t *testing.T) {
	app, mr, client := limitedApp(t, time.Minute)

	for i := 0; i < 5; i++ {
		get(t, app, "/", "")
	}
	keys := mr.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "rate_limit:forms:") {
		t.Fatalf("keys = %v", keys)
	}
	// simulate a lost EXPIRE on the first hit
	if err := client.Persist(t.Context(), keys[0]).Err(); err != nil {
		t.Fatalf("persist: %v", err)
	}

	if status, _ := get(t, app, "/", ""); status != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", status)
	}
	if ttl := mr.TTL(keys[0]); ttl != time.Minute {
		t.Errorf("ttl after block = %v, want %v", ttl, time.Minute)
	}
	mr.FastForward(time.Minute)
	if status, _ := get(t, app, "/", ""); status != 204 {
		t.Errorf("after window status = %d, want 204", status)
	}
}
