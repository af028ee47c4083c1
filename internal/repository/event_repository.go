package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// EventRepo provides CRUD for events and owns the ticket-inventory
// counters. The check-and-decrement on tickets_available is a single
// conditional UPDATE so concurrent bookings for the same event serialize on
// the row without a read-then-write window.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span this repository and the registration ledger.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, name, DATE_FORMAT(event_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i'),
       location, description, price_millimes, tickets_total, tickets_available, image_url, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var ev model.Event
	var img sql.NullString
	err := row.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.StartTime, &ev.Location,
		&ev.Description, &ev.PriceMillimes, &ev.TicketsTotal, &ev.TicketsAvailable, &img,
		&ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if img.Valid {
		u := img.String
		ev.ImageURL = &u
	}
	return &ev, nil
}

// Create inserts a new event. Tickets start fully available.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (name, event_date, start_time, location, description,
	                               price_millimes, tickets_total, tickets_available, image_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, ev.Name, ev.Date, ev.StartTime, ev.Location,
		ev.Description, ev.PriceMillimes, ev.TicketsTotal, ev.TicketsTotal, ev.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	ev.TicketsAvailable = ev.TicketsTotal
	return nil
}

// GetByID loads one event. Returns ErrNotFound when it does not exist.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return ev, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	ev, err := scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return ev, err
}

// List returns all events ordered by date ascending.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_date, start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ev)
	}
	return items, rows.Err()
}

// ListElapsedBetween returns events whose start instant falls in the
// half-open window (from, to]. The review-invite sweeper uses it to pick up
// events that finished since its previous pass.
func (r *EventRepo) ListElapsedBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE TIMESTAMP(event_date, start_time) > ? AND TIMESTAMP(event_date, start_time) <= ?
		 ORDER BY event_date, start_time`,
		from.Format("2006-01-02 15:04:05"), to.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ev)
	}
	return items, rows.Err()
}

// Update rewrites the descriptive fields and the unit price of an event.
// Changing the price never touches existing registrations: their totals were
// locked in at booking time. When the total ticket count grows or shrinks,
// the available counter moves by the same delta but never below zero.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	const q = `UPDATE events
	           SET name = ?, event_date = ?, start_time = ?, location = ?, description = ?, price_millimes = ?,
	               tickets_available = GREATEST(0, LEAST(tickets_available + (? - tickets_total), ?)),
	               tickets_total = ?, image_url = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, ev.Name, ev.Date, ev.StartTime, ev.Location,
		ev.Description, ev.PriceMillimes, ev.TicketsTotal, ev.TicketsTotal, ev.TicketsTotal, ev.ImageURL, ev.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update, so
		// double-check existence before reporting not found.
		if _, err := r.GetByID(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an event; registrations cascade via the FK.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveTicketsTx atomically takes n tickets from the event's inventory
// inside the booking transaction. The condition in the UPDATE makes the
// check and the decrement one statement: when no row matches, the event is
// either missing or short on tickets, and the remaining count is re-read
// under the same transaction to build the InsufficientInventoryError.
func (r *EventRepo) ReserveTicketsTx(ctx context.Context, tx *sql.Tx, eventID uint64, n uint32) error {
	const q = `UPDATE events
	           SET tickets_available = tickets_available - ?
	           WHERE id = ? AND tickets_available >= ?`
	res, err := tx.ExecContext(ctx, q, n, eventID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	var remaining uint32
	err = tx.QueryRowContext(ctx,
		`SELECT tickets_available FROM events WHERE id = ?`, eventID).Scan(&remaining)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return &InsufficientInventoryError{Remaining: remaining}
}

// ReleaseTicketsTx returns n tickets to the inventory after a cancellation.
// LEAST caps the counter at tickets_total so repeated releases can never
// inflate the inventory past its size.
func (r *EventRepo) ReleaseTicketsTx(ctx context.Context, tx *sql.Tx, eventID uint64, n uint32) error {
	const q = `UPDATE events
	           SET tickets_available = LEAST(tickets_total, tickets_available + ?)
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, eventID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// The driver reports changed rows, so a release that was fully
		// capped looks identical to a missing event. Tell them apart.
		var exists uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ?`, eventID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}
