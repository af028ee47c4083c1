package model

import "time"

// Event is a company event with a fixed ticket inventory. Prices are stored
// in millimes (1 TND = 1000 millimes) to avoid float arithmetic on money.
//
// TicketsAvailable is the live counter decremented by bookings and restored
// by cancellations; the invariant 0 <= TicketsAvailable <= TicketsTotal is
// enforced by the booking transaction, never recomputed from the ledger.
type Event struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Date             string    `json:"event_date"` // YYYY-MM-DD
	StartTime        string    `json:"start_time"` // HH:MM
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	PriceMillimes    uint32    `json:"price_millimes"`
	TicketsTotal     uint32    `json:"tickets_total"`
	TicketsAvailable uint32    `json:"tickets_available"`
	ImageURL         *string   `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StartsAt combines the stored date and start time into a UTC instant.
// A zero time is returned when either field is malformed.
func (e *Event) StartsAt() time.Time {
	t, err := time.Parse("2006-01-02 15:04", e.Date+" "+e.StartTime)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Elapsed reports whether the event has already started at the given instant.
// Reviews are only accepted for elapsed events, and registrations on elapsed
// events read as expired.
func (e *Event) Elapsed(now time.Time) bool {
	at := e.StartsAt()
	return !at.IsZero() && !at.After(now.UTC())
}
