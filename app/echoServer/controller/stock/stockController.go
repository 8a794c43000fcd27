package stock

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/model"
	ss "github.com/carry-jpg/LibraryDatabase/service/stock"
)

type Controller struct {
	Svc ss.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/stock/set
func (h *Controller) Set(c echo.Context) error {
	var req model.SetStockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid, quality or quantity"})
	}

	importIfMissing := true
	if req.ImportIfMissing != nil {
		importIfMissing = *req.ImportIfMissing
	}

	if err := h.Svc.Set(c.Request().Context(), req.OLID, req.Quality, *req.Quantity, importIfMissing); err != nil {
		switch ss.Code(err) {
		case ss.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid, quality or quantity"})
		case ss.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Book not in catalog"})
		case ss.ErrImportFailed:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Failed to import edition from OpenLibrary"})
		default:
			h.Log.Error("stock set", "err", err, "olid", req.OLID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// GET /api/stock/list
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("stock list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if rows == nil {
		rows = []model.StockRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /api/stock/delete
func (h *Controller) Delete(c echo.Context) error {
	var req model.DeleteStockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: stockId"})
	}

	if err := h.Svc.Delete(c.Request().Context(), req.StockID); err != nil {
		if ss.Code(err) == ss.ErrStockNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Stock not found"})
		}
		h.Log.Error("stock delete", "err", err, "stockid", req.StockID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
