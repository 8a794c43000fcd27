package wishlist

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/app/echoServer/session"
	"github.com/carry-jpg/LibraryDatabase/model"
	ws "github.com/carry-jpg/LibraryDatabase/service/wishlist"
)

type Controller struct {
	Svc ws.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/wishlist/toggle
func (h *Controller) Toggle(c echo.Context) error {
	var req model.WishlistToggleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid"})
	}
	u := session.CurrentUser(c)

	wished, err := h.Svc.Toggle(c.Request().Context(), u.ID, req)
	if err != nil {
		if ws.Code(err) == ws.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid"})
		}
		h.Log.Error("wishlist toggle", "err", err, "olid", req.OLID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"wished": wished})
}

// GET /api/wishlist/ids
func (h *Controller) IDs(c echo.Context) error {
	u := session.CurrentUser(c)
	ids, err := h.Svc.IDs(c.Request().Context(), u.ID)
	if err != nil {
		h.Log.Error("wishlist ids", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, ids)
}

// GET /api/wishlist/list
func (h *Controller) List(c echo.Context) error {
	u := session.CurrentUser(c)
	rows, err := h.Svc.List(c.Request().Context(), u.ID)
	if err != nil {
		h.Log.Error("wishlist list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/wishlist/admin/summary
func (h *Controller) AdminSummary(c echo.Context) error {
	rows, err := h.Svc.Summary(c.Request().Context())
	if err != nil {
		h.Log.Error("wishlist summary", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}
