package rental

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/app/echoServer/session"
	"github.com/carry-jpg/LibraryDatabase/model"
	rs "github.com/carry-jpg/LibraryDatabase/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/rentals/request
func (h *Controller) Request(c echo.Context) error {
	var req RequestRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: stockId"})
	}
	u := session.CurrentUser(c)

	id, err := h.Svc.Request(c.Request().Context(), u.ID, req.StockID, req.Note)
	if err != nil {
		if rs.Code(err) == rs.ErrStockNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Stock not found"})
		}
		h.Log.Error("rental request", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "rentalid": id})
}

// GET /api/rentals/my
func (h *Controller) My(c echo.Context) error {
	u := session.CurrentUser(c)
	rows, err := h.Svc.ListMine(c.Request().Context(), u.ID)
	if err != nil {
		h.Log.Error("rentals my", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/rentals/admin/requests
func (h *Controller) AdminRequests(c echo.Context) error {
	return h.adminList(c, h.Svc.ListRequests)
}

// GET /api/rentals/admin/approved
func (h *Controller) AdminApproved(c echo.Context) error {
	return h.adminList(c, h.Svc.ListApproved)
}

// GET /api/rentals/admin/active
func (h *Controller) AdminActive(c echo.Context) error {
	return h.adminList(c, h.Svc.ListActive)
}

func (h *Controller) adminList(c echo.Context, list func(ctx context.Context) ([]model.RentalRow, error)) error {
	rows, err := list(c.Request().Context())
	if err != nil {
		h.Log.Error("rentals admin list", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /api/rentals/admin/approve
func (h *Controller) AdminApprove(c echo.Context) error {
	var req ApproveRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing requestId/startAt/endAt"})
	}
	admin := session.CurrentUser(c)

	if err := h.Svc.Approve(c.Request().Context(), admin.ID, req.RequestID, req.StartAt, req.EndAt); err != nil {
		switch rs.Code(err) {
		case rs.ErrBadDates:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid dates: endAt must be after startAt"})
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Rental not found"})
		case rs.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Rental already decided"})
		case rs.ErrStockNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Stock not found"})
		case rs.ErrNoStock:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Out of stock"})
		default:
			h.Log.Error("rental approve", "err", err, "rentalid", req.RequestID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/rentals/admin/dismiss
func (h *Controller) AdminDismiss(c echo.Context) error {
	var req DismissRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: requestId"})
	}
	admin := session.CurrentUser(c)

	if err := h.Svc.Dismiss(c.Request().Context(), admin.ID, req.RequestID); err != nil {
		if rs.Code(err) == rs.ErrNotPending {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Rental not found or not pending"})
		}
		h.Log.Error("rental dismiss", "err", err, "rentalid", req.RequestID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/rentals/admin/complete
func (h *Controller) AdminComplete(c echo.Context) error {
	var req CompleteRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: rentalId"})
	}
	admin := session.CurrentUser(c)

	if err := h.Svc.Complete(c.Request().Context(), admin.ID, req.RentalID); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Rental not found"})
		case rs.ErrNotActive:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Rental not approved or overdue"})
		case rs.ErrStockNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Stock not found"})
		default:
			h.Log.Error("rental complete", "err", err, "rentalid", req.RentalID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
