// Package session resolves the request-scoped principal from the JWT
// session cookie and exposes the role gates used by the routes.
package session

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/model"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
)

const principalKey = "principal"

// Principal resolves the authenticated user from the JWT validated by the
// echo-jwt middleware and threads it through the request context. A token
// whose user no longer exists is treated as no session.
func Principal(ur userrepo.Repo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
			}

			u, err := ur.ByID(c.Request().Context(), int64(sub))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			c.Set(principalKey, u)
			return next(c)
		}
	}
}

// RequireAdmin gates admin-only routes. Must run after Principal.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
			}
			if u.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the request-scoped principal, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(principalKey).(*model.User)
	return u
}
