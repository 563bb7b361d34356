// Package admingate guards the back office surface of an app. It protects
// the /admin pages and /api/admin endpoints with a signed token carried in
// a header or a cookie, leaving the public site untouched.
package admingate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrTokenMissing = errors.New("missing admin token")

	defaultStaticAsset = regexp.MustCompile(`\.(ico|png|jpe?g|svg|gif|css|js|woff2?|map)$`)
)

// Claims is what a validated token must expose. Defined locally so the
// middleware does not import the package that mints tokens.
type Claims interface {
	Identity() string
	CanAccessBackOffice() bool
}

// TokenValidator turns a raw token string into claims.
type TokenValidator interface {
	Validate(raw string) (Claims, error)
}

// TokenValidatorFunc adapts a plain function to TokenValidator.
type TokenValidatorFunc func(raw string) (Claims, error)

func (f TokenValidatorFunc) Validate(raw string) (Claims, error) {
	return f(raw)
}

type Config struct {
	// PagePrefix is the protected browser surface.
	PagePrefix string
	// APIPrefix is the protected JSON surface.
	APIPrefix string
	// LoginPage is the page shown to unauthenticated browsers. It is always
	// reachable.
	LoginPage string
	// LoginEndpoint is the API route that mints tokens. It is always
	// reachable.
	LoginEndpoint string
	// TokenHeader and CookieName are checked in that order, after a
	// standard Authorization bearer.
	TokenHeader string
	CookieName  string
	// RedirectParam carries the originally requested path through the
	// login redirect.
	RedirectParam string
	// FragmentHeaders marks client-side navigation fetches that render
	// their own login state and must not be redirected.
	FragmentHeaders []string
	// ContextKey is where validated claims are stored on the request.
	ContextKey string
	// StaticAsset matches paths the gate ignores outright.
	StaticAsset *regexp.Regexp

	TokenValidator TokenValidator
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("ADMINGATE: middleware configuration: TokenValidator is required.")
	}

	if cfg.PagePrefix == "" {
		cfg.PagePrefix = "/admin"
	}

	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/admin"
	}

	if cfg.LoginPage == "" {
		cfg.LoginPage = "/admin/login"
	}

	if cfg.LoginEndpoint == "" {
		cfg.LoginEndpoint = "/api/admin/login"
	}

	if cfg.TokenHeader == "" {
		cfg.TokenHeader = "adminToken"
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "adminToken"
	}

	if cfg.RedirectParam == "" {
		cfg.RedirectParam = "from"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "admin_claims"
	}

	if cfg.StaticAsset == nil {
		cfg.StaticAsset = defaultStaticAsset
	}

	return cfg
}

// New builds the gate handler. Mount it on the app root: it decides per
// request whether the path is under protection at all.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		path := c.Path()

		if !cfg.protects(path) {
			return c.Next()
		}

		if cfg.StaticAsset.MatchString(path) {
			return c.Next()
		}

		if cfg.isFragmentFetch(c) {
			return c.Next()
		}

		if path == cfg.LoginPage || path == cfg.LoginEndpoint {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, cfg)
		if err != nil {
			return cfg.deny(c, path)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.deny(c, path)
		}

		if !claims.CanAccessBackOffice() {
			return cfg.deny(c, path)
		}

		c.Locals(cfg.ContextKey, claims)

		// downstream handlers and proxied services read the token from the
		// canonical header regardless of where the client carried it
		c.Request().Header.Set(cfg.TokenHeader, raw)

		return c.Next()
	}
}

// ClaimsFromContext returns the validated claims a passing request carries.
func ClaimsFromContext(c *fiber.Ctx, config ...Config) (Claims, bool) {
	key := "admin_claims"
	if len(config) > 0 && config[0].ContextKey != "" {
		key = config[0].ContextKey
	}

	claims, ok := c.Locals(key).(Claims)
	return claims, ok
}

func (cfg Config) protects(path string) bool {
	return strings.HasPrefix(path, cfg.PagePrefix) || strings.HasPrefix(path, cfg.APIPrefix)
}

func (cfg Config) isAPI(path string) bool {
	return strings.HasPrefix(path, cfg.APIPrefix)
}

func (cfg Config) isFragmentFetch(c *fiber.Ctx) bool {
	for _, header := range cfg.FragmentHeaders {
		if c.Get(header) != "" {
			return true
		}
	}
	return false
}

// deny 401s API calls and sends browsers to the login page, remembering
// where they were headed. An existing redirect param is left alone so a
// failed login retry cannot stack nested ones.
func (cfg Config) deny(c *fiber.Ctx, path string) error {
	if cfg.isAPI(path) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	target := cfg.LoginPage
	if c.Query(cfg.RedirectParam) == "" {
		target = cfg.LoginPage + "?" + cfg.RedirectParam + "=" + urlQueryEscape(path)
	}

	return c.Redirect(target, fiber.StatusSeeOther)
}
