package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/booking"
	"github.com/mahmoud7895/loisirtt-portal/internal/config"
	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/queue"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
	queue_publisher "github.com/mahmoud7895/loisirtt-portal/internal/service"
)

// EventStore is the slice of the event repository the admin handler needs.
type EventStore interface {
	Create(ctx context.Context, ev *model.Event) error
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Update(ctx context.Context, ev *model.Event) error
	Delete(ctx context.Context, id uint64) error
}

// AdminEventHandler owns the event catalog and its registration ledger.
// Every mutation refreshes the dashboard; creating or updating an event
// additionally publishes a broker notice that fans out to agents by email.
type AdminEventHandler struct {
	Cfg      config.Config
	Events   EventStore
	EventReg *repository.EventRegistrationRepo
	Booking  *booking.Service
	Hub      *dashboard.Hub

	// Notify publishes the broker notice. Swappable in tests; the default
	// goes through the RabbitMQ publisher.
	Notify func(ctx context.Context, notice queue.EventPublishedNotice) error
}

func NewAdminEventHandler(cfg config.Config, ev EventStore, er *repository.EventRegistrationRepo,
	b *booking.Service, hub *dashboard.Hub) *AdminEventHandler {
	return &AdminEventHandler{
		Cfg:      cfg,
		Events:   ev,
		EventReg: er,
		Booking:  b,
		Hub:      hub,
		Notify: func(ctx context.Context, notice queue.EventPublishedNotice) error {
			return queue_publisher.PublishEventNotice(ctx, cfg.AMQPURL, notice)
		},
	}
}

type eventReq struct {
	Name          string  `json:"name"`
	Date          string  `json:"event_date"` // YYYY-MM-DD
	StartTime     string  `json:"start_time"` // HH:MM
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	PriceMillimes uint32  `json:"price_millimes"`
	TicketsTotal  uint32  `json:"tickets_total"`
	ImageURL      *string `json:"image_url"`
}

func (r *eventReq) validate() string {
	if r.Name == "" {
		return "name required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return "event_date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", r.StartTime); err != nil {
		return "start_time must be HH:MM"
	}
	if r.TicketsTotal < 1 {
		return "tickets_total must be at least 1"
	}
	return ""
}

func (r *eventReq) toModel(id uint64) *model.Event {
	return &model.Event{
		ID:            id,
		Name:          r.Name,
		Date:          r.Date,
		StartTime:     r.StartTime,
		Location:      r.Location,
		Description:   r.Description,
		PriceMillimes: r.PriceMillimes,
		TicketsTotal:  r.TicketsTotal,
		ImageURL:      r.ImageURL,
	}
}

// announce publishes the broker notice for a created or updated event. Best
// effort: the event exists regardless of whether the notice or the dashboard
// push succeed.
func (h *AdminEventHandler) announce(ctx context.Context, c echo.Context, ev *model.Event) {
	notice := queue.EventPublishedNotice{
		EventID:       ev.ID,
		Name:          ev.Name,
		Description:   ev.Description,
		Location:      ev.Location,
		Date:          ev.Date,
		StartTime:     ev.StartTime,
		PriceMillimes: ev.PriceMillimes,
		TicketsTotal:  ev.TicketsTotal,
		PublishedBy:   claimString(c, "matricule"),
		PublishedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	_ = h.Notify(ctx, notice)
}

// Create inserts a new event with a full inventory, announces it on the
// broker and refreshes the dashboard.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := req.toModel(0)
	if err := h.Events.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}

	h.announce(ctx, c, ev)
	h.Hub.Refresh(ctx)

	return c.JSON(http.StatusCreated, ev)
}

// Update edits an event's descriptive fields, price and capacity, then
// announces the change on the broker like Create does. A price change never
// retouches existing registration totals; a capacity change shifts the
// available counter by the same delta, clamped to [0, total].
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Update(ctx, req.toModel(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}

	updated, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload event failed"})
	}
	h.announce(ctx, c, updated)
	h.Hub.Refresh(ctx)
	return c.JSON(http.StatusOK, updated)
}

// Delete removes an event and, through the schema's cascade, its
// registrations and reviews.
func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}

// ListRegistrations returns every event registration with its derived status.
func (h *AdminEventHandler) ListRegistrations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.EventReg.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// DeleteRegistration cancels a registration on behalf of an agent, returning
// its tickets to the event inventory.
func (h *AdminEventHandler) DeleteRegistration(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Booking.CancelEvent(ctx, id); err != nil {
		return writeBookingError(c, err)
	}
	h.Hub.Refresh(ctx)
	return c.NoContent(http.StatusNoContent)
}
