package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/config"
	"github.com/mahmoud7895/loisirtt-portal/internal/dashboard"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/queue"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

type memEventStore struct {
	nextID uint64
	events map[uint64]*model.Event
}

func newMemEventStore() *memEventStore {
	return &memEventStore{nextID: 1, events: map[uint64]*model.Event{}}
}

func (s *memEventStore) Create(_ context.Context, ev *model.Event) error {
	ev.ID = s.nextID
	s.nextID++
	if ev.TicketsAvailable == 0 {
		ev.TicketsAvailable = ev.TicketsTotal
	}
	cp := *ev
	s.events[ev.ID] = &cp
	return nil
}

func (s *memEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *memEventStore) Update(_ context.Context, ev *model.Event) error {
	prev, ok := s.events[ev.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *ev
	cp.TicketsAvailable = prev.TicketsAvailable
	s.events[ev.ID] = &cp
	return nil
}

func (s *memEventStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type nilStats struct{}

func (nilStats) Stats(context.Context) (*model.Stats, error) { return &model.Stats{}, nil }

// adminEventFixture wires the handler against an in-memory store and records
// every broker notice instead of dialing RabbitMQ.
func adminEventFixture() (*AdminEventHandler, *memEventStore, *[]queue.EventPublishedNotice) {
	store := newMemEventStore()
	h := NewAdminEventHandler(config.Config{}, store, nil, nil, dashboard.NewHub(nilStats{}))
	var notices []queue.EventPublishedNotice
	h.Notify = func(_ context.Context, n queue.EventPublishedNotice) error {
		notices = append(notices, n)
		return nil
	}
	return h, store, &notices
}

func adminCtx(method, path, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("matricule", "1234")
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	return c, rec
}

func TestCreateEventPublishesNotice(t *testing.T) {
	h, store, notices := adminEventFixture()

	body := `{"name":"Tournoi de tennis","event_date":"2026-10-10","start_time":"09:30",` +
		`"location":"Rades","description":"Tournoi annuel inter-agences","price_millimes":5000,"tickets_total":40}`
	c, rec := adminCtx(http.MethodPost, "/v1/admin/events", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	if len(*notices) != 1 {
		t.Fatalf("published %d notices, want 1", len(*notices))
	}
	n := (*notices)[0]
	if n.Name != "Tournoi de tennis" || n.Description != "Tournoi annuel inter-agences" || n.PublishedBy != "1234" {
		t.Fatalf("unexpected notice: %+v", n)
	}

	ev, err := store.GetByID(context.Background(), n.EventID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ev.Description != "Tournoi annuel inter-agences" {
		t.Fatalf("stored description = %q", ev.Description)
	}
}

func TestUpdateEventPublishesNotice(t *testing.T) {
	h, store, notices := adminEventFixture()

	seed := &model.Event{
		Name: "Hammamet", Date: "2026-11-01", StartTime: "08:00",
		Location: "Hammamet", Description: "Sortie plage", PriceMillimes: 20000, TicketsTotal: 30,
	}
	if err := store.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"name":"Hammamet Sud","event_date":"2026-11-01","start_time":"07:30",` +
		`"location":"Hammamet Sud","description":"Depart avance a 7h30","price_millimes":20000,"tickets_total":30}`
	c, rec := adminCtx(http.MethodPut, "/v1/admin/events/1", body, "id", "1")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if len(*notices) != 1 {
		t.Fatalf("published %d notices on update, want 1", len(*notices))
	}
	n := (*notices)[0]
	if n.EventID != seed.ID || n.Name != "Hammamet Sud" || n.StartTime != "07:30" {
		t.Fatalf("unexpected notice: %+v", n)
	}
	if n.Description != "Depart avance a 7h30" {
		t.Fatalf("notice description = %q", n.Description)
	}

	var got model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Description != "Depart avance a 7h30" {
		t.Fatalf("response description = %q", got.Description)
	}
}

func TestUpdateMissingEventPublishesNothing(t *testing.T) {
	h, _, notices := adminEventFixture()

	body := `{"name":"X","event_date":"2026-11-01","start_time":"08:00","tickets_total":10}`
	c, rec := adminCtx(http.MethodPut, "/v1/admin/events/99", body, "id", "99")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if len(*notices) != 0 {
		t.Fatalf("published %d notices for missing event, want 0", len(*notices))
	}
}
