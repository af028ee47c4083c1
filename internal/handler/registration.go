package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/booking"
	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// RegistrationHandler covers the agent-facing registration flows: booking
// event tickets, joining clubs and sports, and browsing one's own
// registrations.
type RegistrationHandler struct {
	Booking  *booking.Service
	EventReg *repository.EventRegistrationRepo
	Clubs    *repository.MembershipRepo
	Sports   *repository.MembershipRepo
	Hub      *dashboard.Hub
}

func NewRegistrationHandler(b *booking.Service, er *repository.EventRegistrationRepo,
	clubs, sports *repository.MembershipRepo, hub *dashboard.Hub) *RegistrationHandler {
	return &RegistrationHandler{Booking: b, EventReg: er, Clubs: clubs, Sports: sports, Hub: hub}
}

type bookEventReq struct {
	Matricule   string `json:"matricule"`
	Nom         string `json:"nom"`
	Prenom      string `json:"prenom"`
	Beneficiary string `json:"beneficiary"` // AGENT | CHILD
	Age         uint8  `json:"age"`
	Payment     string `json:"payment"`
	Tickets     uint32 `json:"tickets"`
}

type joinTypeReq struct {
	Matricule   string `json:"matricule"`
	Nom         string `json:"nom"`
	Prenom      string `json:"prenom"`
	Beneficiary string `json:"beneficiary"`
	Age         uint8  `json:"age"`
}

// fillDefaults copies the authenticated agent's identity into an empty
// beneficiary form, so the common self-registration case needs no typing.
func fillDefaults(c echo.Context, matricule, nom, prenom *string) {
	if *matricule == "" {
		*matricule = claimString(c, "matricule")
	}
	if *nom == "" {
		*nom = claimString(c, "nom")
	}
	if *prenom == "" {
		*prenom = claimString(c, "prenom")
	}
}

// BookEvent registers a beneficiary for an event through the booking
// service's atomic reserve-and-insert.
func (h *RegistrationHandler) BookEvent(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bookEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fillDefaults(c, &req.Matricule, &req.Nom, &req.Prenom)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var userID *uint64
	if uid, ok := currentUserID(c); ok {
		userID = &uid
	}
	reg, err := h.Booking.BookEvent(ctx, booking.EventBooking{
		EventID:     eventID,
		UserID:      userID,
		Matricule:   req.Matricule,
		Nom:         req.Nom,
		Prenom:      req.Prenom,
		Beneficiary: req.Beneficiary,
		Age:         req.Age,
		Payment:     req.Payment,
		Tickets:     req.Tickets,
	})
	if err != nil {
		return writeBookingError(c, err)
	}
	h.Hub.Refresh(ctx)
	return c.JSON(http.StatusCreated, reg)
}

// CancelEventRegistration cancels one of the caller's own registrations and
// returns its tickets to the inventory.
func (h *RegistrationHandler) CancelEventRegistration(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Ownership check before touching the ledger.
	mine, err := h.EventReg.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	owned := false
	for _, r := range mine {
		if r.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	if _, err := h.Booking.CancelEvent(ctx, id); err != nil {
		return writeBookingError(c, err)
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}

// JoinClub registers a beneficiary with a club.
func (h *RegistrationHandler) JoinClub(c echo.Context) error {
	return h.join(c, h.Booking.JoinClub)
}

// JoinSport registers a beneficiary with a sport activity.
func (h *RegistrationHandler) JoinSport(c echo.Context) error {
	return h.join(c, h.Booking.JoinSport)
}

func (h *RegistrationHandler) join(c echo.Context, op func(context.Context, booking.TypeJoin) (*model.TypeRegistration, error)) error {
	typeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req joinTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fillDefaults(c, &req.Matricule, &req.Nom, &req.Prenom)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var userID *uint64
	if uid, ok := currentUserID(c); ok {
		userID = &uid
	}
	reg, err := op(ctx, booking.TypeJoin{
		TypeID:      typeID,
		UserID:      userID,
		Matricule:   req.Matricule,
		Nom:         req.Nom,
		Prenom:      req.Prenom,
		Beneficiary: req.Beneficiary,
		Age:         req.Age,
	})
	if err != nil {
		return writeBookingError(c, err)
	}
	h.Hub.Refresh(ctx)
	return c.JSON(http.StatusCreated, reg)
}

// MyRegistrations returns everything the caller is registered for, with
// derived statuses.
func (h *RegistrationHandler) MyRegistrations(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.EventReg.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	clubs, err := h.Clubs.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sports, err := h.Sports.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"clubs":  clubs,
		"sports": sports,
	})
}
