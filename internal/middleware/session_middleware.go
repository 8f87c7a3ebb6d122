package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	AdminCookieName  = "admin_token"
	StudioCookieName = "studio_token"

	principalKey = "auth_principal"
	claimsKey    = "auth_claims"
)

// Rejection messages. Expired and forged tokens share one message.
const (
	MsgNoToken          = "No token provided"
	MsgInvalidToken     = "Invalid token"
	MsgIdentityRejected = "User not found or deactivated"
)

// ErrPrincipalNotFound is returned by a PrincipalLoader when the token's
// identity no longer exists.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalLoader resolves the identity named by a verified token.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id uuid.UUID) (*model.Principal, error)
}

// SessionConfig parameterizes one tenant's session gate.
type SessionConfig struct {
	Tenant     model.Tenant
	CookieName string
	// Secure marks cookies written by the gate (the clearing cookie).
	Secure bool
	Logger *slog.Logger
}

// Session returns the per-request gate for one tenant: extract the token
// (Bearer header first, then cookie), verify it, load the identity and
// require it to be active. Rejected tokens have their cookie cleared.
func Session(cfg SessionConfig, codec *TokenCodec, loader PrincipalLoader) echo.MiddlewareFunc {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c, cfg.CookieName)
			if tokenString == "" {
				return reject(c, MsgNoToken)
			}

			claims, err := codec.Verify(cfg.Tenant, tokenString)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					log.Info("session token expired", "path", c.Path())
				} else {
					log.Warn("session token rejected", "path", c.Path(), "error", err)
				}
				ClearSessionCookie(c, cfg.CookieName, cfg.Secure)
				return reject(c, MsgInvalidToken)
			}

			// Verify guarantees a parseable subject
			id, _ := claims.UserID()
			p, err := loader.LoadPrincipal(c.Request().Context(), id)
			if err != nil && !errors.Is(err, ErrPrincipalNotFound) {
				return err
			}
			if p == nil || !p.Active {
				log.Info("session identity unavailable", "user_id", id)
				ClearSessionCookie(c, cfg.CookieName, cfg.Secure)
				return reject(c, MsgIdentityRejected)
			}

			c.Set(principalKey, p)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// GetPrincipal returns the identity attached by Session, or nil.
func GetPrincipal(c echo.Context) *model.Principal {
	if p, ok := c.Get(principalKey).(*model.Principal); ok {
		return p
	}
	return nil
}

// GetClaims returns the verified token claims attached by Session, or nil.
func GetClaims(c echo.Context) *Claims {
	if cl, ok := c.Get(claimsKey).(*Claims); ok {
		return cl
	}
	return nil
}

// RequireRole must run after Session; it admits only the listed roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil || !slices.Contains(roles, p.Role) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Insufficient permissions"})
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context, cookieName string) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		parts := strings.Fields(auth)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func reject(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": msg})
}

// EndSession expires the tenant cookie before the rest of the chain runs.
// Placed ahead of the gate on logout, the cookie is cleared whatever the
// gate or the store answers.
func EndSession(cookieName string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ClearSessionCookie(c, cookieName, secure)
			return next(c)
		}
	}
}

// SetSessionCookie writes the tenant's session cookie.
func SetSessionCookie(c echo.Context, name, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the tenant's session cookie.
func ClearSessionCookie(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
