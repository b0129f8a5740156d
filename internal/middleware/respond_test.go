package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestWantsJSONNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		want   bool
	}{
		{"api path", "/api/members", "", true},
		{"api path with html accept", "/api/members", "text/html", true},
		{"browser page", "/news", "text/html,application/xhtml+xml", false},
		{"json accept outside api", "/news", "application/json", true},
		{"mixed accept with json", "/news", "text/html, application/json;q=0.9", true},
		{"no accept outside api", "/news", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/*", func(c *fiber.Ctx) error {
				if WantsJSON(c) != tt.want {
					t.Errorf("WantsJSON = %v, want %v", !tt.want, tt.want)
				}
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRespondErrorHTMLForBrowsers(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/admin", func(c *fiber.Ctx) error {
		return RespondError(c, fiber.StatusForbidden, "Access denied.")
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q, want html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "Access Denied") {
		t.Error("page should carry the status title")
	}
	if !strings.Contains(page, "Request ID:") {
		t.Error("page should show the correlation id")
	}
}

func TestRespondErrorJSONForAPI(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/api/thing", func(c *fiber.Ctx) error {
		return RespondError(c, fiber.StatusNotFound, "Thing not found.")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/thing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`"ok":false`, `"message":"Thing not found."`, `"request_id"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}
