package middleware

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/ratelimit"
	"github.com/local1284/membership/internal/rbac"
	"go.uber.org/zap"
)

func limiterApp(identity *rbac.Identity) *fiber.App {
	cfg := &config.Config{
		RateLimitGeneral: config.RateLimit{Window: time.Minute, Max: 100},
		RateLimitLogin:   config.RateLimit{Window: 15 * time.Minute, Max: 3},
	}
	limiter := ratelimit.New(ratelimit.NewMemoryCounterStore(), cfg)

	app := fiber.New()
	app.Use(RequestIDMiddleware(), fakeIdentity(identity))
	app.Post("/api/auth/login",
		RateLimitMiddleware(limiter, ratelimit.ClassLogin, zap.NewNop()),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestRateLimitCeilingExact(t *testing.T) {
	app := limiterApp(nil)

	for i := 1; i <= 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/auth/login", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/api/auth/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("429 must carry Retry-After")
	}
	if sec, err := strconv.Atoi(retryAfter); err != nil || sec < 1 {
		t.Errorf("Retry-After = %q, want integer seconds >= 1", retryAfter)
	}
}

func TestRateLimitKeysByIdentity(t *testing.T) {
	// Same app, same source IP, distinct identities: each gets its own
	// counter window.
	cfg := &config.Config{
		RateLimitGeneral: config.RateLimit{Window: time.Minute, Max: 100},
		RateLimitLogin:   config.RateLimit{Window: 15 * time.Minute, Max: 1},
	}
	limiter := ratelimit.New(ratelimit.NewMemoryCounterStore(), cfg)

	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(CtxIdentity, &rbac.Identity{ID: c.Get("X-Test-User"), Role: rbac.RoleStaff})
		return c.Next()
	})
	app.Post("/api/auth/login",
		RateLimitMiddleware(limiter, ratelimit.ClassLogin, zap.NewNop()),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.Header.Set("X-Test-User", user)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode
	}

	if send("alice") != fiber.StatusOK {
		t.Fatal("alice's first request should pass")
	}
	if send("alice") != fiber.StatusTooManyRequests {
		t.Error("alice's second request should be throttled")
	}
	if send("bob") != fiber.StatusOK {
		t.Error("bob should be unaffected by alice's window")
	}
}
