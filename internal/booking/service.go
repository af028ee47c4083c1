// Package booking owns the registration rules of the portal: input
// validation, the ticket capacity guard and the duplicate-registration
// guard. Persistence hides behind the Ledger interface so the guard
// contracts can be exercised without a database; the production ledger in
// sqlledger.go runs each booking as one MySQL transaction.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// ErrValidation wraps every input rejection raised before persistence is
// touched. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// ErrTypeArchived is returned when a join targets an archived club or sport
// type. Archived types keep their history but accept no new registrations.
var ErrTypeArchived = errors.New("type is archived")

// Ledger is the persistent store behind the guards. Every method that
// mutates state is atomic: RegisterForEvent performs the duplicate check,
// the conditional inventory decrement and the insert as one unit, and
// CancelEventRegistration pairs the delete with the capped inventory
// release. Implementations return repository.ErrDuplicateRegistration,
// repository.ErrNotFound and *repository.InsufficientInventoryError to
// signal the guard outcomes.
type Ledger interface {
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	RegisterForEvent(ctx context.Context, reg *model.EventRegistration) error
	CancelEventRegistration(ctx context.Context, id uint64) (*model.EventRegistration, error)
	JoinClub(ctx context.Context, reg *model.TypeRegistration) error
	JoinSport(ctx context.Context, reg *model.TypeRegistration) error
}

// Service validates requests and drives the ledger.
type Service struct {
	ledger Ledger
}

// NewService returns a booking service over the given ledger.
func NewService(l Ledger) *Service {
	if l == nil {
		panic("nil ledger passed to booking.NewService")
	}
	return &Service{ledger: l}
}

// EventBooking is a request to register a beneficiary for an event. The
// total amount is never taken from the client; the ledger computes it from
// the unit price it reads inside the booking transaction.
type EventBooking struct {
	EventID     uint64
	UserID      *uint64
	Matricule   string
	Nom         string
	Prenom      string
	Beneficiary string
	Age         uint8
	Payment     string
	Tickets     uint32
}

// TypeJoin is a request to register a beneficiary for a club or sport type.
type TypeJoin struct {
	TypeID      uint64
	UserID      *uint64
	Matricule   string
	Nom         string
	Prenom      string
	Beneficiary string
	Age         uint8
}

// TotalMillimes computes the amount locked in at booking time.
func TotalMillimes(unitPrice uint32, tickets uint32) uint32 {
	return unitPrice * tickets
}

// BookEvent validates the request and records it through the ledger. On
// success the returned registration carries its generated ID, timestamp and
// the total computed from the price at booking time.
func (s *Service) BookEvent(ctx context.Context, req EventBooking) (*model.EventRegistration, error) {
	ben, age, err := validateBeneficiary(req.Matricule, req.Nom, req.Prenom, req.Beneficiary, req.Age)
	if err != nil {
		return nil, err
	}
	if req.Tickets < 1 {
		return nil, fmt.Errorf("%w: at least one ticket is required", ErrValidation)
	}
	if req.Payment == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	reg := &model.EventRegistration{
		EventID:     req.EventID,
		UserID:      req.UserID,
		Matricule:   req.Matricule,
		Nom:         req.Nom,
		Prenom:      req.Prenom,
		Beneficiary: ben,
		Age:         age,
		Payment:     req.Payment,
		Tickets:     req.Tickets,
	}
	if err := s.ledger.RegisterForEvent(ctx, reg); err != nil {
		return nil, err
	}
	reg.Status = model.StatusActive
	return reg, nil
}

// CancelEvent removes a registration and returns its tickets to the event's
// inventory, capped at the event's total.
func (s *Service) CancelEvent(ctx context.Context, id uint64) (*model.EventRegistration, error) {
	return s.ledger.CancelEventRegistration(ctx, id)
}

// JoinClub registers a beneficiary with a club type, rejecting duplicates
// for the same (matricule, beneficiary, age) identity.
func (s *Service) JoinClub(ctx context.Context, req TypeJoin) (*model.TypeRegistration, error) {
	return s.join(ctx, req, s.ledger.JoinClub)
}

// JoinSport registers a beneficiary with a sport activity type.
func (s *Service) JoinSport(ctx context.Context, req TypeJoin) (*model.TypeRegistration, error) {
	return s.join(ctx, req, s.ledger.JoinSport)
}

func (s *Service) join(ctx context.Context, req TypeJoin, insert func(context.Context, *model.TypeRegistration) error) (*model.TypeRegistration, error) {
	ben, age, err := validateBeneficiary(req.Matricule, req.Nom, req.Prenom, req.Beneficiary, req.Age)
	if err != nil {
		return nil, err
	}
	reg := &model.TypeRegistration{
		TypeID:      req.TypeID,
		UserID:      req.UserID,
		Matricule:   req.Matricule,
		Nom:         req.Nom,
		Prenom:      req.Prenom,
		Beneficiary: ben,
		Age:         age,
	}
	if err := insert(ctx, reg); err != nil {
		return nil, err
	}
	reg.Status = model.StatusActive
	return reg, nil
}
