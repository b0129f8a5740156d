package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WantsJSON selects the response shape for errors: API-namespaced paths and
// JSON-accepting clients get a JSON body, browsers get a small error page.
func WantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	return strings.Contains(strings.ToLower(c.Get("Accept")), "application/json")
}

// RespondError writes a negotiated error response carrying the correlation
// id. Internal details never leak; callers pass a stable public message.
func RespondError(c *fiber.Ctx, status int, message string) error {
	requestID := GetRequestID(c)

	if WantsJSON(c) {
		return c.Status(status).JSON(fiber.Map{
			"ok":         false,
			"message":    message,
			"request_id": requestID,
		})
	}

	title := "Request Error"
	switch status {
	case fiber.StatusUnauthorized:
		title = "Sign In Required"
	case fiber.StatusForbidden:
		title = "Access Denied"
	case fiber.StatusNotFound:
		title = "Not Found"
	case fiber.StatusTooManyRequests:
		title = "Too Many Requests"
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(fmt.Sprintf(
		"<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p><p><small>Request ID: %s</small></p></body></html>",
		title, title, message, requestID,
	))
}
