package repository

import (
	"context"
	"database/sql"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// TypeRepo manages the activity-type catalog. Club types and sport types
// share the same schema in separate tables, so one repo is parameterised by
// the table pair instead of duplicating every query.
type TypeRepo struct {
	db       *sql.DB
	table    string // club_types or sport_types
	regTable string // club_memberships or sport_registrations
}

// NewClubTypeRepo returns the repo over the club type catalog.
func NewClubTypeRepo(db *sql.DB) *TypeRepo {
	return &TypeRepo{db: db, table: "club_types", regTable: "club_memberships"}
}

// NewSportTypeRepo returns the repo over the sport activity type catalog.
func NewSportTypeRepo(db *sql.DB) *TypeRepo {
	return &TypeRepo{db: db, table: "sport_types", regTable: "sport_registrations"}
}

// Create inserts a new type. Names are unique per catalog.
func (r *TypeRepo) Create(ctx context.Context, name string) (*model.ActivityType, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (name) VALUES (?)`, name)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads one type, ErrNotFound when absent.
func (r *TypeRepo) GetByID(ctx context.Context, id uint64) (*model.ActivityType, error) {
	const cols = `id, name, archived, archived_at, created_at`
	var t model.ActivityType
	var archivedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM `+r.table+` WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Archived, &archivedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		at := archivedAt.Time
		t.ArchivedAt = &at
	}
	return &t, nil
}

// List returns the whole catalog, optionally filtered to archived or active
// types only (archived == nil returns everything).
func (r *TypeRepo) List(ctx context.Context, archived *bool) ([]model.ActivityType, error) {
	q := `SELECT id, name, archived, archived_at, created_at FROM ` + r.table
	args := []any{}
	if archived != nil {
		q += ` WHERE archived = ?`
		args = append(args, *archived)
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ActivityType, 0)
	for rows.Next() {
		var t model.ActivityType
		var archivedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Name, &t.Archived, &archivedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		if archivedAt.Valid {
			at := archivedAt.Time
			t.ArchivedAt = &at
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// UpdateName renames a type.
func (r *TypeRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Archive flips the archived flag and records the instant. Registrations
// referencing the type are untouched; their status is derived from this flag
// at read time. Archiving an already archived type is a no-op.
func (r *TypeRepo) Archive(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET archived = 1, archived_at = UTC_TIMESTAMP() WHERE id = ? AND archived = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Restore reverses an archive, turning the type's registrations active again.
func (r *TypeRepo) Restore(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET archived = 0, archived_at = NULL WHERE id = ? AND archived = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a type only when no registration references it; otherwise
// ErrConflict. Archival is the supported way to retire a type that has
// history.
func (r *TypeRepo) Delete(ctx context.Context, id uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+r.regTable+` WHERE type_id = ? LIMIT 1`, id).Scan(&one)
	if err == nil {
		return ErrConflict
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
