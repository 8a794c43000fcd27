// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/app/echoServer/session"
	"github.com/carry-jpg/LibraryDatabase/model"
	authsvc "github.com/carry-jpg/LibraryDatabase/service/auth"
	jwtutil "github.com/carry-jpg/LibraryDatabase/util/jwt"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger

	JWTSecret  string
	CookieName string
	TTLHours   int
	Secure     bool
}

// Register a new user
// @Summary      Register user
// @Description  Register a new account; the first account becomes admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /api/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email or password too short"})
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered"})
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email or password too short"})
		default:
			ct.Log.Error("register failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	if err := ct.startSession(c, u); err != nil {
		ct.Log.Error("issue session", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// Login
// @Summary      Login
// @Description  Login with email + password, sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing email or password"})
	}

	u, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing email or password"})
		default:
			ct.Log.Error("login failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	if err := ct.startSession(c, u); err != nil {
		ct.Log.Error("issue session", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Logout clears the session cookie.
func (ct *Controller) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     ct.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ct.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the current principal.
func (ct *Controller) Me(c echo.Context) error {
	u := session.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (ct *Controller) startSession(c echo.Context, u *model.User) error {
	token, err := jwtutil.Issue(ct.JWTSecret, u.ID, string(u.Role), ct.TTLHours)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     ct.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(ct.TTLHours) * time.Hour),
		HttpOnly: true,
		Secure:   ct.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
