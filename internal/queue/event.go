// Package queue defines message payloads exchanged over the message broker.
package queue

// EventPublishedNotice is published when an admin creates a new event. It
// carries everything downstream consumers need to notify agents without
// querying the primary database.
type EventPublishedNotice struct {
	EventID       uint64 `json:"event_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	PriceMillimes uint32 `json:"price_millimes"`
	TicketsTotal  uint32 `json:"tickets_total"`
	PublishedBy   string `json:"published_by"`
	PublishedAt   string `json:"published_at"`
}
