package user

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/app/echoServer/session"
	"github.com/carry-jpg/LibraryDatabase/model"
	us "github.com/carry-jpg/LibraryDatabase/service/user"
)

type Controller struct {
	Svc us.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/admin/users
func (h *Controller) List(c echo.Context) error {
	users, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("users list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// POST /api/admin/users/role
func (h *Controller) SetRole(c echo.Context) error {
	var req model.SetRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: userId or role"})
	}
	admin := session.CurrentUser(c)

	if err := h.Svc.SetRole(c.Request().Context(), admin.ID, req.UserID, model.Role(req.Role)); err != nil {
		switch us.Code(err) {
		case us.ErrBadRole:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid role"})
		case us.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		case us.ErrSelfDemotion:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Admins cannot remove their own admin role"})
		case us.ErrNoChange:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Role unchanged"})
		default:
			h.Log.Error("set role", "err", err, "userid", req.UserID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
