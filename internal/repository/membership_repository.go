package repository

import (
	"context"
	"database/sql"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// MembershipRepo persists club memberships and sport registrations, which
// share one shape across two tables. The unique key
// (type_id, matricule, beneficiary, age) is the duplicate guard's backstop;
// age 0 stands for the agent so the key stays total (MySQL unique indexes
// ignore NULLs).
type MembershipRepo struct {
	db        *sql.DB
	table     string
	typeTable string
}

// NewClubMembershipRepo returns the repo over club_memberships.
func NewClubMembershipRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{db: db, table: "club_memberships", typeTable: "club_types"}
}

// NewSportRegistrationRepo returns the repo over sport_registrations.
func NewSportRegistrationRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{db: db, table: "sport_registrations", typeTable: "sport_types"}
}

// ExistsForBeneficiary reports whether the beneficiary identity already
// holds a registration for the type. Used as the friendly pre-check before
// the insert; the unique key catches the race where two identical requests
// pass the check together.
func (r *MembershipRepo) ExistsForBeneficiary(ctx context.Context, typeID uint64, matricule, beneficiary string, age uint8) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+r.table+` WHERE type_id = ? AND matricule = ? AND beneficiary = ? AND age = ? LIMIT 1`,
		typeID, matricule, beneficiary, age).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a registration and fills in the generated ID and
// timestamp. Duplicate-key violations surface as ErrDuplicateRegistration.
func (r *MembershipRepo) Create(ctx context.Context, reg *model.TypeRegistration) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (type_id, user_id, matricule, nom, prenom, beneficiary, age)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.TypeID, reg.UserID, reg.Matricule, reg.Nom, reg.Prenom, reg.Beneficiary, reg.Age)
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
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM `+r.table+` WHERE id = ?`, reg.ID).Scan(&reg.CreatedAt)
}

// List returns every registration with its type name and derived status,
// newest first.
func (r *MembershipRepo) List(ctx context.Context) ([]model.TypeRegistration, error) {
	q := `SELECT m.id, m.type_id, m.user_id, m.matricule, m.nom, m.prenom, m.beneficiary,
	             m.age, m.created_at, t.name, t.archived
	      FROM ` + r.table + ` m
	      JOIN ` + r.typeTable + ` t ON t.id = m.type_id
	      ORDER BY m.created_at DESC`
	return r.query(ctx, q)
}

// ListByUser returns one agent's registrations, newest first.
func (r *MembershipRepo) ListByUser(ctx context.Context, userID uint64) ([]model.TypeRegistration, error) {
	q := `SELECT m.id, m.type_id, m.user_id, m.matricule, m.nom, m.prenom, m.beneficiary,
	             m.age, m.created_at, t.name, t.archived
	      FROM ` + r.table + ` m
	      JOIN ` + r.typeTable + ` t ON t.id = m.type_id
	      WHERE m.user_id = ?
	      ORDER BY m.created_at DESC`
	return r.query(ctx, q, userID)
}

// Get loads one registration with its derived status.
func (r *MembershipRepo) Get(ctx context.Context, id uint64) (*model.TypeRegistration, error) {
	q := `SELECT m.id, m.type_id, m.user_id, m.matricule, m.nom, m.prenom, m.beneficiary,
	             m.age, m.created_at, t.name, t.archived
	      FROM ` + r.table + ` m
	      JOIN ` + r.typeTable + ` t ON t.id = m.type_id
	      WHERE m.id = ?`
	items, err := r.query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// Delete removes a registration (admin action, terminal).
func (r *MembershipRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembershipRepo) query(ctx context.Context, q string, args ...any) ([]model.TypeRegistration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.TypeRegistration, 0)
	for rows.Next() {
		var reg model.TypeRegistration
		var userID sql.NullInt64
		var archived bool
		if err := rows.Scan(&reg.ID, &reg.TypeID, &userID, &reg.Matricule, &reg.Nom,
			&reg.Prenom, &reg.Beneficiary, &reg.Age, &reg.CreatedAt, &reg.TypeName, &archived); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			reg.UserID = &uid
		}
		reg.Status = model.DeriveTypeStatus(archived)
		items = append(items, reg)
	}
	return items, rows.Err()
}
