// Package model declares the persistent entities of the leisure portal.
package model

import "time"

// Roles stored in users.role and carried in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleAgent = "AGENT"
)

// User is a portal account. Agents register themselves or their children for
// activities; admins manage the catalog and the registrations.
//
// Matricule is the 4-5 digit employee identifier and is unique across
// accounts, like the login.
type User struct {
	ID             uint64    `json:"id"`
	Login          string    `json:"login"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Matricule      string    `json:"matricule"`
	Nom            string    `json:"nom"`
	Prenom         string    `json:"prenom"`
	Email          string    `json:"email"`
	Telephone      string    `json:"telephone"`
	ResidenceAdmin string    `json:"residence_administrative"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
