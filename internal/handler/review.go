package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
	"github.com/mahmoud7895/loisirtt-portal/internal/sentiment"
)

// ReviewHandler accepts feedback on elapsed events. A review is allowed only
// when the caller's matricule holds a registration for the event and the
// event has already taken place; one review per matricule per event.
type ReviewHandler struct {
	Reviews   *repository.ReviewRepo
	Events    *repository.EventRepo
	EventReg  *repository.EventRegistrationRepo
	Sentiment *sentiment.Client
	Hub       *dashboard.Hub
}

func NewReviewHandler(r *repository.ReviewRepo, ev *repository.EventRepo,
	er *repository.EventRegistrationRepo, s *sentiment.Client, hub *dashboard.Hub) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Events: ev, EventReg: er, Sentiment: s, Hub: hub}
}

type reviewReq struct {
	Rating  uint8  `json:"rating"` // 1..5
	Comment string `json:"comment"`
}

// Create stores a review, classifying the comment through the sentiment
// service when it is reachable and falling back to the star rating when not.
func (h *ReviewHandler) Create(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5"})
	}
	matricule := claimString(c, "matricule")
	if matricule == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ev.Elapsed(time.Now()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has not taken place yet"})
	}
	registered, err := h.EventReg.HasForEvent(ctx, eventID, matricule)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !registered {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no registration for this event"})
	}

	var sent *model.Sentiment
	if comment := strings.TrimSpace(req.Comment); comment != "" {
		sent, err = h.Sentiment.Analyze(ctx, comment)
		if err != nil {
			sent = sentiment.FromRating(req.Rating)
		}
	} else {
		sent = sentiment.FromRating(req.Rating)
	}

	var userID *uint64
	if uid, ok := currentUserID(c); ok {
		userID = &uid
	}
	rev := &model.Review{
		EventID:   eventID,
		UserID:    userID,
		Matricule: matricule,
		Nom:       claimString(c, "nom"),
		Prenom:    claimString(c, "prenom"),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Sentiment: sent,
	}
	if err := h.Reviews.Create(ctx, rev); err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	h.Hub.Refresh(ctx)
	return c.JSON(http.StatusCreated, rev)
}

// ListByEvent returns all reviews for an event.
func (h *ReviewHandler) ListByEvent(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reviews.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
