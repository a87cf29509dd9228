package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/necfill/api/pkg/response"
)

// PasswordAuth guards the submit route with the shared portal password. The
// credential rides in the multipart form ("password") or, for non-form
// clients, the X-Portal-Password header.
type PasswordAuth struct {
	password string
}

func NewPasswordAuth(password string) *PasswordAuth {
	return &PasswordAuth{password: password}
}

// Authenticate rejects the request before any job is created.
func (m *PasswordAuth) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplied := c.FormValue("password")
		if supplied == "" {
			supplied = c.Get("X-Portal-Password")
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.password)) != 1 {
			return response.Forbidden(c, "Invalid password")
		}
		return c.Next()
	}
}
