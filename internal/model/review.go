package model

import "time"

// Sentiment is the classification attached to a review comment by the
// sentiment side-service, or derived from the star rating when the service
// is unreachable.
type Sentiment struct {
	Label string  `json:"label"` // POSITIVE | NEUTRAL | NEGATIVE
	Score float64 `json:"score"`
	Stars uint8   `json:"stars"`
}

// Review is feedback left by an agent on an event they attended. Creation is
// gated on holding a registration for the event and on the event having
// elapsed.
type Review struct {
	ID        uint64     `json:"id"`
	EventID   uint64     `json:"event_id"`
	UserID    *uint64    `json:"user_id,omitempty"`
	Matricule string     `json:"matricule"`
	Nom       string     `json:"nom"`
	Prenom    string     `json:"prenom"`
	Rating    uint8      `json:"rating"` // 1..5
	Comment   string     `json:"comment"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
