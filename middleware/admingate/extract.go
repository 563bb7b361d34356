package admingate

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ExtractRawToken resolves the token for a request: a standard bearer
// Authorization wins, then the dedicated header, then the cookie.
func ExtractRawToken(c *fiber.Ctx, cfg Config) (string, error) {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		const scheme = "Bearer"
		if len(auth) > len(scheme)+1 && strings.EqualFold(auth[:len(scheme)], scheme) {
			return strings.TrimSpace(auth[len(scheme):]), nil
		}
	}

	if token := c.Get(cfg.TokenHeader); token != "" {
		return token, nil
	}

	if token := c.Cookies(cfg.CookieName); token != "" {
		return token, nil
	}

	return "", ErrTokenMissing
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}
