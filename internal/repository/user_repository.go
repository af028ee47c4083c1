package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/utils"
)

// UserRepo persists portal accounts.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a repo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrLoginExists is returned when the login or matricule is already taken.
var ErrLoginExists = errors.New("login or matricule already exists")

const userColumns = `id, login, password_hash, role, matricule, nom, prenom, email,
       telephone, residence_administrative, is_active, created_at, updated_at`

// Create hashes the password and inserts the account, returning its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Login = strings.ToLower(strings.TrimSpace(u.Login))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, role, matricule, nom, prenom, email, telephone, residence_administrative)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Login, hash, u.Role, u.Matricule, u.Nom, u.Prenom, u.Email, u.Telephone, u.ResidenceAdmin)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrLoginExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches a user by normalized login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE login = ? LIMIT 1`, login)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
}

// ListAgents returns every active agent account, used to fan out event
// notification emails.
func (r *UserRepo) ListAgents(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? AND is_active = 1 ORDER BY nom, prenom`,
		model.RoleAgent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *UserRepo) get(ctx context.Context, q string, arg any) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, q, arg))
}

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.Matricule, &u.Nom,
		&u.Prenom, &u.Email, &u.Telephone, &u.ResidenceAdmin, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}
