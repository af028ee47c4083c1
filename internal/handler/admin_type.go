package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// TypeHandler manages one catalog of activity types (clubs or sports; the
// two route groups share this handler with different repos). Types are
// archived rather than deleted so existing registrations keep their history
// and read as expired.
type TypeHandler struct {
	Types *repository.TypeRepo
	Hub   *dashboard.Hub
}

func NewTypeHandler(t *repository.TypeRepo, hub *dashboard.Hub) *TypeHandler {
	return &TypeHandler{Types: t, Hub: hub}
}

type typeReq struct {
	Name string `json:"name"`
}

func (h *TypeHandler) Create(c echo.Context) error {
	var req typeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Types.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	h.Hub.Refresh(ctx)
	return c.JSON(http.StatusCreated, t)
}

// List returns types, filterable with ?archived=true|false.
func (h *TypeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var archived *bool
	switch strings.ToLower(c.QueryParam("archived")) {
	case "true", "1":
		v := true
		archived = &v
	case "false", "0":
		v := false
		archived = &v
	}

	items, err := h.Types.List(ctx, archived)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *TypeHandler) Rename(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req typeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Types.UpdateName(ctx, id, strings.TrimSpace(req.Name)); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rename failed"})
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}

// Archive retires a type. Registrations survive and show as expired.
func (h *TypeHandler) Archive(c echo.Context) error {
	return h.setArchived(c, h.Types.Archive)
}

// Restore reactivates an archived type.
func (h *TypeHandler) Restore(c echo.Context) error {
	return h.setArchived(c, h.Types.Restore)
}

func (h *TypeHandler) setArchived(c echo.Context, op func(context.Context, uint64) error) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a type that never had a registration. Referenced types must
// be archived instead.
func (h *TypeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Types.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "type has registrations, archive it instead"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}
