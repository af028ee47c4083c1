package model

import "time"

// Beneficiary kinds. A registration is made either for the agent themselves
// or for one of their dependent children; each child is told apart by age.
const (
	BeneficiaryAgent = "AGENT"
	BeneficiaryChild = "CHILD"
)

// Registration statuses are derived, never stored: a registration reads as
// expired when its parent event has elapsed or its parent type was archived.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// EventRegistration is one row of the event booking ledger. The total is
// locked in at booking time (Tickets x the event's unit price at that
// moment) and is never touched by later price changes.
//
// Age is 0 for the agent themselves and the child's real age (3-17)
// otherwise; together with Matricule and Beneficiary it forms the
// beneficiary identity that the duplicate guard keys on.
type EventRegistration struct {
	ID            uint64    `json:"id"`
	EventID       uint64    `json:"event_id"`
	UserID        *uint64   `json:"user_id,omitempty"`
	Matricule     string    `json:"matricule"`
	Nom           string    `json:"nom"`
	Prenom        string    `json:"prenom"`
	Beneficiary   string    `json:"beneficiary"`
	Age           uint8     `json:"age,omitempty"`
	Payment       string    `json:"payment"`
	Tickets       uint32    `json:"tickets"`
	TotalMillimes uint32    `json:"total_millimes"`
	CreatedAt     time.Time `json:"created_at"`
	Status        string    `json:"status"` // derived, see DeriveEventStatus
}

// DeriveEventStatus computes the displayed status of an event registration
// from its parent event's schedule.
func DeriveEventStatus(ev *Event, now time.Time) string {
	if ev != nil && ev.Elapsed(now) {
		return StatusExpired
	}
	return StatusActive
}

// TypeRegistration ties a beneficiary to a club or sport activity type
// (clubs and sports share the same shape and live in separate tables).
// Registrations survive the archival of their type; only the derived status
// flips to expired.
type TypeRegistration struct {
	ID          uint64    `json:"id"`
	TypeID      uint64    `json:"type_id"`
	UserID      *uint64   `json:"user_id,omitempty"`
	Matricule   string    `json:"matricule"`
	Nom         string    `json:"nom"`
	Prenom      string    `json:"prenom"`
	Beneficiary string    `json:"beneficiary"`
	Age         uint8     `json:"age,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`    // derived from the type's archived flag
	TypeName    string    `json:"type_name"` // joined for display
}

// DeriveTypeStatus maps a type's archived flag onto a registration status.
func DeriveTypeStatus(archived bool) string {
	if archived {
		return StatusExpired
	}
	return StatusActive
}
