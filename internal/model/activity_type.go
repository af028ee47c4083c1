package model

import "time"

// ActivityType is a club or sport activity category managed by admins.
// Archiving a type keeps every existing registration but flips their derived
// status to expired; the flag and timestamp are the single source of truth
// for that state.
type ActivityType struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
