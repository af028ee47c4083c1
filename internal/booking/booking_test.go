package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// memLedger implements Ledger in memory with the same atomicity guarantees
// as the SQL ledger: one mutex plays the role of the row lock, so the
// duplicate check, the inventory decrement and the insert are indivisible.
type memLedger struct {
	mu         sync.Mutex
	nextID     uint64
	events     map[uint64]*model.Event
	eventRegs  map[uint64]*model.EventRegistration
	clubTypes  map[uint64]*model.ActivityType
	sportTypes map[uint64]*model.ActivityType
	clubRegs   []*model.TypeRegistration
	sportRegs  []*model.TypeRegistration
}

func newMemLedger() *memLedger {
	return &memLedger{
		events:     map[uint64]*model.Event{},
		eventRegs:  map[uint64]*model.EventRegistration{},
		clubTypes:  map[uint64]*model.ActivityType{},
		sportTypes: map[uint64]*model.ActivityType{},
	}
}

func (m *memLedger) addEvent(ev model.Event) *model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ev.ID = m.nextID
	m.events[ev.ID] = &ev
	return &ev
}

func (m *memLedger) addType(kind string, name string, archived bool) *model.ActivityType {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &model.ActivityType{ID: m.nextID, Name: name, Archived: archived}
	if kind == "club" {
		m.clubTypes[t.ID] = t
	} else {
		m.sportTypes[t.ID] = t
	}
	return t
}

func (m *memLedger) GetEvent(_ context.Context, id uint64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memLedger) RegisterForEvent(_ context.Context, reg *model.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[reg.EventID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, r := range m.eventRegs {
		if r.EventID == reg.EventID && r.Matricule == reg.Matricule &&
			r.Beneficiary == reg.Beneficiary && r.Age == reg.Age {
			return repository.ErrDuplicateRegistration
		}
	}
	if reg.Tickets > ev.TicketsAvailable {
		return &repository.InsufficientInventoryError{Remaining: ev.TicketsAvailable}
	}
	ev.TicketsAvailable -= reg.Tickets
	reg.TotalMillimes = TotalMillimes(ev.PriceMillimes, reg.Tickets)
	m.nextID++
	reg.ID = m.nextID
	cp := *reg
	m.eventRegs[reg.ID] = &cp
	return nil
}

func (m *memLedger) CancelEventRegistration(_ context.Context, id uint64) (*model.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.eventRegs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.eventRegs, id)
	if ev, ok := m.events[reg.EventID]; ok {
		ev.TicketsAvailable += reg.Tickets
		if ev.TicketsAvailable > ev.TicketsTotal {
			ev.TicketsAvailable = ev.TicketsTotal
		}
	}
	return reg, nil
}

func (m *memLedger) JoinClub(_ context.Context, reg *model.TypeRegistration) error {
	return m.join(reg, m.clubTypes, &m.clubRegs)
}

func (m *memLedger) JoinSport(_ context.Context, reg *model.TypeRegistration) error {
	return m.join(reg, m.sportTypes, &m.sportRegs)
}

func (m *memLedger) join(reg *model.TypeRegistration, types map[uint64]*model.ActivityType, regs *[]*model.TypeRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := types[reg.TypeID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Archived {
		return ErrTypeArchived
	}
	for _, r := range *regs {
		if r.TypeID == reg.TypeID && r.Matricule == reg.Matricule &&
			r.Beneficiary == reg.Beneficiary && r.Age == reg.Age {
			return repository.ErrDuplicateRegistration
		}
	}
	m.nextID++
	reg.ID = m.nextID
	reg.TypeName = t.Name
	cp := *reg
	*regs = append(*regs, &cp)
	return nil
}

func booking(eventID uint64, matricule string, tickets uint32) EventBooking {
	return EventBooking{
		EventID:     eventID,
		Matricule:   matricule,
		Nom:         "Ben Salah",
		Prenom:      "Karim",
		Beneficiary: model.BeneficiaryAgent,
		Payment:     "cash",
		Tickets:     tickets,
	}
}

// The end-to-end inventory walk-through: 10 tickets, book 6, fail on 5 with
// remaining=4, book 4, fail on 1 with remaining=0.
func TestCapacityGuardWalkthrough(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ev := ledger.addEvent(model.Event{Name: "Gala", Date: "2030-06-01", StartTime: "18:00",
		PriceMillimes: 5000, TicketsTotal: 10, TicketsAvailable: 10})
	svc := NewService(ledger)

	first, err := svc.BookEvent(ctx, booking(ev.ID, "12345", 6))
	if err != nil {
		t.Fatalf("booking 6 tickets: %v", err)
	}
	if first.TotalMillimes != 6*5000 {
		t.Errorf("total = %d, want %d", first.TotalMillimes, 6*5000)
	}
	if got, _ := ledger.GetEvent(ctx, ev.ID); got.TicketsAvailable != 4 {
		t.Errorf("tickets_available = %d, want 4", got.TicketsAvailable)
	}

	_, err = svc.BookEvent(ctx, booking(ev.ID, "23456", 5))
	var short *repository.InsufficientInventoryError
	if !errors.As(err, &short) {
		t.Fatalf("booking 5 of 4: err = %v, want InsufficientInventoryError", err)
	}
	if short.Remaining != 4 {
		t.Errorf("remaining = %d, want 4", short.Remaining)
	}

	if _, err := svc.BookEvent(ctx, booking(ev.ID, "23456", 4)); err != nil {
		t.Fatalf("booking the last 4 tickets: %v", err)
	}
	if got, _ := ledger.GetEvent(ctx, ev.ID); got.TicketsAvailable != 0 {
		t.Errorf("tickets_available = %d, want 0", got.TicketsAvailable)
	}

	_, err = svc.BookEvent(ctx, booking(ev.ID, "34567", 1))
	if !errors.As(err, &short) {
		t.Fatalf("booking on empty event: err = %v, want InsufficientInventoryError", err)
	}
	if short.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", short.Remaining)
	}
}

// Fire many concurrent single-ticket bookings at a small event and verify
// the accepted ticket sum never exceeds the inventory.
func TestConcurrentBookingsNeverOversell(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	capacity := uint32(5)
	ev := ledger.addEvent(model.Event{Name: "Tournoi", Date: "2030-06-01", StartTime: "09:00",
		PriceMillimes: 1000, TicketsTotal: capacity, TicketsAvailable: capacity})
	svc := NewService(ledger)

	requests := 100
	var success, soldOut, other int32
	var wg sync.WaitGroup
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		go func(n int) {
			defer wg.Done()
			req := booking(ev.ID, "10000", 1)
			// Distinct matricules keep the duplicate guard out of the way.
			req.Matricule = "1" + string([]byte{byte('0' + n/100%10), byte('0' + n/10%10), byte('0' + n%10)})
			_, err := svc.BookEvent(ctx, req)
			var short *repository.InsufficientInventoryError
			switch {
			case err == nil:
				atomic.AddInt32(&success, 1)
			case errors.As(err, &short):
				atomic.AddInt32(&soldOut, 1)
			default:
				t.Logf("unexpected error for request %d: %v", n, err)
				atomic.AddInt32(&other, 1)
			}
		}(i)
	}
	wg.Wait()

	t.Logf("results -> success: %d | sold out: %d | other: %d", success, soldOut, other)
	if success != int32(capacity) {
		t.Errorf("successes = %d, want %d", success, capacity)
	}
	if other != 0 {
		t.Errorf("unexpected errors = %d, want 0", other)
	}
	if got, _ := ledger.GetEvent(ctx, ev.ID); got.TicketsAvailable != 0 {
		t.Errorf("tickets_available = %d, want 0", got.TicketsAvailable)
	}
}

// The duplicate-guard walk-through: self twice is rejected, a child of the
// same agent is a different beneficiary key and passes.
func TestDuplicateGuardTennis(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	tennis := ledger.addType("sport", "Tennis", false)
	svc := NewService(ledger)

	join := TypeJoin{TypeID: tennis.ID, Matricule: "12345", Nom: "Trabelsi", Prenom: "Aymen",
		Beneficiary: model.BeneficiaryAgent}
	if _, err := svc.JoinSport(ctx, join); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := svc.JoinSport(ctx, join); !errors.Is(err, repository.ErrDuplicateRegistration) {
		t.Fatalf("second identical join: err = %v, want ErrDuplicateRegistration", err)
	}
	child := join
	child.Beneficiary = model.BeneficiaryChild
	child.Age = 10
	if _, err := svc.JoinSport(ctx, child); err != nil {
		t.Fatalf("child join: %v", err)
	}
}

func TestCancelRestoresTickets(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ev := ledger.addEvent(model.Event{Name: "Concert", Date: "2030-09-01", StartTime: "20:00",
		PriceMillimes: 8000, TicketsTotal: 10, TicketsAvailable: 10})
	svc := NewService(ledger)

	reg, err := svc.BookEvent(ctx, booking(ev.ID, "12345", 3))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if got, _ := ledger.GetEvent(ctx, ev.ID); got.TicketsAvailable != 7 {
		t.Fatalf("tickets_available = %d, want 7", got.TicketsAvailable)
	}
	cancelled, err := svc.CancelEvent(ctx, reg.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Tickets != 3 {
		t.Errorf("cancelled tickets = %d, want 3", cancelled.Tickets)
	}
	got, _ := ledger.GetEvent(ctx, ev.ID)
	if got.TicketsAvailable != 10 {
		t.Errorf("tickets_available = %d, want 10", got.TicketsAvailable)
	}
	if got.TicketsAvailable > got.TicketsTotal {
		t.Errorf("tickets_available %d exceeds total %d", got.TicketsAvailable, got.TicketsTotal)
	}
	if _, err := svc.CancelEvent(ctx, reg.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("double cancel: err = %v, want ErrNotFound", err)
	}
}

func TestTotalFixedAtBookingTime(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ev := ledger.addEvent(model.Event{Name: "Fete", Date: "2030-03-15", StartTime: "10:00",
		PriceMillimes: 2000, TicketsTotal: 20, TicketsAvailable: 20})
	svc := NewService(ledger)

	reg, err := svc.BookEvent(ctx, booking(ev.ID, "12345", 2))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if reg.TotalMillimes != 4000 {
		t.Fatalf("total = %d, want 4000", reg.TotalMillimes)
	}

	// A later price change must not touch the recorded total.
	ledger.mu.Lock()
	ledger.events[ev.ID].PriceMillimes = 9000
	ledger.mu.Unlock()

	ledger.mu.Lock()
	stored := ledger.eventRegs[reg.ID].TotalMillimes
	ledger.mu.Unlock()
	if stored != 4000 {
		t.Errorf("stored total = %d, want 4000", stored)
	}
}

func TestArchivedTypeRejectsJoin(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	chess := ledger.addType("club", "Echecs", true)
	svc := NewService(ledger)

	_, err := svc.JoinClub(ctx, TypeJoin{TypeID: chess.ID, Matricule: "12345",
		Nom: "Gharbi", Prenom: "Ines", Beneficiary: model.BeneficiaryAgent})
	if !errors.Is(err, ErrTypeArchived) {
		t.Fatalf("join archived type: err = %v, want ErrTypeArchived", err)
	}
}

func TestBookingValidation(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ev := ledger.addEvent(model.Event{Name: "Gala", Date: "2030-06-01", StartTime: "18:00",
		PriceMillimes: 5000, TicketsTotal: 10, TicketsAvailable: 10})
	svc := NewService(ledger)

	tests := []struct {
		name   string
		mutate func(*EventBooking)
	}{
		{"matricule too short", func(b *EventBooking) { b.Matricule = "123" }},
		{"matricule not numeric", func(b *EventBooking) { b.Matricule = "12a45" }},
		{"unknown beneficiary", func(b *EventBooking) { b.Beneficiary = "COUSIN" }},
		{"child too young", func(b *EventBooking) { b.Beneficiary = model.BeneficiaryChild; b.Age = 2 }},
		{"child too old", func(b *EventBooking) { b.Beneficiary = model.BeneficiaryChild; b.Age = 18 }},
		{"zero tickets", func(b *EventBooking) { b.Tickets = 0 }},
		{"missing payment", func(b *EventBooking) { b.Payment = "" }},
		{"missing name", func(b *EventBooking) { b.Nom = " " }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := booking(ev.ID, "12345", 1)
			tc.mutate(&req)
			if _, err := svc.BookEvent(ctx, req); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	// A stray age on an agent booking is normalised to 0, not rejected.
	req := booking(ev.ID, "12345", 1)
	req.Age = 12
	reg, err := svc.BookEvent(ctx, req)
	if err != nil {
		t.Fatalf("agent with age set: %v", err)
	}
	if reg.Age != 0 {
		t.Errorf("agent age = %d, want 0", reg.Age)
	}
}
