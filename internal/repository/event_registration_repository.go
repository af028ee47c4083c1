package repository

import (
	"context"
	"database/sql"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// EventRegistrationRepo persists the event booking ledger. Inserts happen
// inside the booking transaction together with the inventory decrement; the
// unique key (event_id, matricule, beneficiary, age) backstops the
// duplicate pre-check.
type EventRegistrationRepo struct {
	db *sql.DB
}

// NewEventRegistrationRepo returns a repo bound to the given database.
func NewEventRegistrationRepo(db *sql.DB) *EventRegistrationRepo {
	return &EventRegistrationRepo{db: db}
}

// ExistsForBeneficiaryTx reports whether the beneficiary identity already
// holds a registration for the event, inside the booking transaction.
func (r *EventRegistrationRepo) ExistsForBeneficiaryTx(ctx context.Context, tx *sql.Tx, eventID uint64, matricule, beneficiary string, age uint8) (bool, error) {
	const q = `SELECT 1 FROM event_registrations
	           WHERE event_id = ? AND matricule = ? AND beneficiary = ? AND age = ?
	           LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, eventID, matricule, beneficiary, age).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a ledger row within the booking transaction and fills in
// the generated ID and timestamp. A duplicate-key violation surfaces as
// ErrDuplicateRegistration.
func (r *EventRegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.EventRegistration) error {
	const q = `INSERT INTO event_registrations
	           (event_id, user_id, matricule, nom, prenom, beneficiary, age, payment, tickets, total_millimes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, reg.EventID, reg.UserID, reg.Matricule, reg.Nom,
		reg.Prenom, reg.Beneficiary, reg.Age, reg.Payment, reg.Tickets, reg.TotalMillimes)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateRegistration
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM event_registrations WHERE id = ?`, reg.ID).Scan(&reg.CreatedAt)
}

// GetTx loads one registration with its ticket count and event reference,
// used by the cancellation transaction to know how much inventory to return.
func (r *EventRegistrationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.EventRegistration, error) {
	const q = `SELECT id, event_id, user_id, matricule, nom, prenom, beneficiary, age,
	                  payment, tickets, total_millimes, created_at
	           FROM event_registrations WHERE id = ?`
	reg, err := scanEventRegistration(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return reg, err
}

// DeleteTx removes a ledger row inside the cancellation transaction.
func (r *EventRegistrationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the whole ledger with each row's derived status, newest
// first. Status comes from the parent event's schedule, never from a stored
// string.
func (r *EventRegistrationRepo) List(ctx context.Context) ([]model.EventRegistration, error) {
	const q = `SELECT r.id, r.event_id, r.user_id, r.matricule, r.nom, r.prenom, r.beneficiary,
	                  r.age, r.payment, r.tickets, r.total_millimes, r.created_at,
	                  DATE_FORMAT(e.event_date, '%Y-%m-%d'), TIME_FORMAT(e.start_time, '%H:%i')
	           FROM event_registrations r
	           JOIN events e ON e.id = r.event_id
	           ORDER BY r.created_at DESC`
	return r.queryWithStatus(ctx, q)
}

// ListByUser returns one agent's registrations, newest first.
func (r *EventRegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.EventRegistration, error) {
	const q = `SELECT r.id, r.event_id, r.user_id, r.matricule, r.nom, r.prenom, r.beneficiary,
	                  r.age, r.payment, r.tickets, r.total_millimes, r.created_at,
	                  DATE_FORMAT(e.event_date, '%Y-%m-%d'), TIME_FORMAT(e.start_time, '%H:%i')
	           FROM event_registrations r
	           JOIN events e ON e.id = r.event_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	return r.queryWithStatus(ctx, q, userID)
}

// HasForEvent reports whether the matricule holds any registration for the
// event; review eligibility checks use it.
func (r *EventRegistrationRepo) HasForEvent(ctx context.Context, eventID uint64, matricule string) (bool, error) {
	const q = `SELECT 1 FROM event_registrations WHERE event_id = ? AND matricule = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, eventID, matricule).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RegistrantEmails returns the distinct email addresses of the agents who
// booked the event, skipping accounts without one.
func (r *EventRegistrationRepo) RegistrantEmails(ctx context.Context, eventID uint64) ([]string, error) {
	const q = `SELECT DISTINCT u.email
	           FROM event_registrations r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.event_id = ? AND u.email <> ''`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	emails := make([]string, 0)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *EventRegistrationRepo) queryWithStatus(ctx context.Context, q string, args ...any) ([]model.EventRegistration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.EventRegistration, 0)
	now := nowUTC()
	for rows.Next() {
		var reg model.EventRegistration
		var userID sql.NullInt64
		var ev model.Event
		if err := rows.Scan(&reg.ID, &reg.EventID, &userID, &reg.Matricule, &reg.Nom,
			&reg.Prenom, &reg.Beneficiary, &reg.Age, &reg.Payment, &reg.Tickets,
			&reg.TotalMillimes, &reg.CreatedAt, &ev.Date, &ev.StartTime); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			reg.UserID = &uid
		}
		reg.Status = model.DeriveEventStatus(&ev, now)
		items = append(items, reg)
	}
	return items, rows.Err()
}

func scanEventRegistration(row interface{ Scan(...any) error }) (*model.EventRegistration, error) {
	var reg model.EventRegistration
	var userID sql.NullInt64
	err := row.Scan(&reg.ID, &reg.EventID, &userID, &reg.Matricule, &reg.Nom, &reg.Prenom,
		&reg.Beneficiary, &reg.Age, &reg.Payment, &reg.Tickets, &reg.TotalMillimes, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		reg.UserID = &uid
	}
	return &reg, nil
}
