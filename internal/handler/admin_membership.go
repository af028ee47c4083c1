package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// MembershipAdminHandler lets admins review and prune club or sport
// registrations. Like TypeHandler it is instantiated once per catalog.
type MembershipAdminHandler struct {
	Regs *repository.MembershipRepo
	Hub  *dashboard.Hub
}

func NewMembershipAdminHandler(r *repository.MembershipRepo, hub *dashboard.Hub) *MembershipAdminHandler {
	return &MembershipAdminHandler{Regs: r, Hub: hub}
}

func (h *MembershipAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Regs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *MembershipAdminHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Regs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}
