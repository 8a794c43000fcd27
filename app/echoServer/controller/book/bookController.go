package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carry-jpg/LibraryDatabase/model"
	bs "github.com/carry-jpg/LibraryDatabase/service/book"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/openlibrary/search?q=...&limit=...
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParam("q")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.Svc.Search(c.Request().Context(), q, limit)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: q"})
		case bs.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "OpenLibrary request failed"})
		default:
			h.Log.Error("openlibrary search", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/openlibrary/edition?olid=...
func (h *Controller) Edition(c echo.Context) error {
	olid := c.QueryParam("olid")

	out, err := h.Svc.Edition(c.Request().Context(), olid)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid"})
		case bs.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "OpenLibrary request failed"})
		default:
			h.Log.Error("openlibrary edition", "err", err, "olid", olid)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/openlibrary/resolve-editions
func (h *Controller) ResolveEditions(c echo.Context) error {
	var req model.ResolveEditionsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: isbns"})
	}

	out, err := h.Svc.ResolveEditions(c.Request().Context(), req.ISBNs)
	if err != nil {
		if bs.Code(err) == bs.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: isbns"})
		}
		h.Log.Error("resolve editions", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/books/import-edition
func (h *Controller) ImportEdition(c echo.Context) error {
	var req model.ImportEditionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid"})
	}

	b, err := h.Svc.ImportEdition(c.Request().Context(), req.OLID)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing/invalid: olid"})
		case bs.ErrImportFailed:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Edition has no usable title"})
		case bs.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "OpenLibrary request failed"})
		default:
			h.Log.Error("import edition", "err", err, "olid", req.OLID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "book": b})
}
