package booking

import (
	"context"
	"database/sql"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// SQLLedger is the production Ledger over MySQL. Each mutating method runs
// one transaction built from the repositories' ...Tx primitives, so the
// duplicate check, the conditional inventory decrement and the ledger
// insert commit or roll back together.
type SQLLedger struct {
	db         *sql.DB
	events     *repository.EventRepo
	eventRegs  *repository.EventRegistrationRepo
	clubs      *repository.MembershipRepo
	sports     *repository.MembershipRepo
	clubTypes  *repository.TypeRepo
	sportTypes *repository.TypeRepo
}

// NewSQLLedger wires the ledger from its repositories.
func NewSQLLedger(db *sql.DB, events *repository.EventRepo, eventRegs *repository.EventRegistrationRepo,
	clubs, sports *repository.MembershipRepo, clubTypes, sportTypes *repository.TypeRepo) *SQLLedger {
	if db == nil || events == nil || eventRegs == nil || clubs == nil || sports == nil || clubTypes == nil || sportTypes == nil {
		panic("nil dependency passed to booking.NewSQLLedger")
	}
	return &SQLLedger{db: db, events: events, eventRegs: eventRegs,
		clubs: clubs, sports: sports, clubTypes: clubTypes, sportTypes: sportTypes}
}

// GetEvent loads one event.
func (l *SQLLedger) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return l.events.GetByID(ctx, id)
}

// RegisterForEvent books tickets in one transaction: duplicate pre-check,
// atomic conditional decrement of tickets_available, total computed from
// the unit price read under the same transaction, then the insert. The
// unique key on the ledger table backstops the pre-check if two identical
// bookings race past it.
func (l *SQLLedger) RegisterForEvent(ctx context.Context, reg *model.EventRegistration) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ev, err := l.events.GetByIDTx(ctx, tx, reg.EventID)
	if err != nil {
		return err
	}
	exists, err := l.eventRegs.ExistsForBeneficiaryTx(ctx, tx, reg.EventID, reg.Matricule, reg.Beneficiary, reg.Age)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrDuplicateRegistration
	}
	if err := l.events.ReserveTicketsTx(ctx, tx, reg.EventID, reg.Tickets); err != nil {
		return err
	}
	reg.TotalMillimes = TotalMillimes(ev.PriceMillimes, reg.Tickets)
	if err := l.eventRegs.CreateTx(ctx, tx, reg); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CancelEventRegistration deletes the ledger row and returns its tickets to
// the event inventory in the same transaction.
func (l *SQLLedger) CancelEventRegistration(ctx context.Context, id uint64) (*model.EventRegistration, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	reg, err := l.eventRegs.GetTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := l.eventRegs.DeleteTx(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := l.events.ReleaseTicketsTx(ctx, tx, reg.EventID, reg.Tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return reg, nil
}

// JoinClub registers a beneficiary with a club type.
func (l *SQLLedger) JoinClub(ctx context.Context, reg *model.TypeRegistration) error {
	return l.joinType(ctx, reg, l.clubTypes, l.clubs)
}

// JoinSport registers a beneficiary with a sport activity type.
func (l *SQLLedger) JoinSport(ctx context.Context, reg *model.TypeRegistration) error {
	return l.joinType(ctx, reg, l.sportTypes, l.sports)
}

func (l *SQLLedger) joinType(ctx context.Context, reg *model.TypeRegistration, types *repository.TypeRepo, regs *repository.MembershipRepo) error {
	t, err := types.GetByID(ctx, reg.TypeID)
	if err != nil {
		return err
	}
	if t.Archived {
		return ErrTypeArchived
	}
	exists, err := regs.ExistsForBeneficiary(ctx, reg.TypeID, reg.Matricule, reg.Beneficiary, reg.Age)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrDuplicateRegistration
	}
	// The unique key rejects the losing side of a concurrent identical join.
	if err := regs.Create(ctx, reg); err != nil {
		return err
	}
	reg.TypeName = t.Name
	return nil
}
