package model

// TypeCount is a registration count for one club or sport type, labelled
// with the type's name and whether it is archived.
type TypeCount struct {
	TypeID        uint64 `json:"type_id"`
	Name          string `json:"name"`
	Registrations uint64 `json:"registrations"`
}

// BeneficiaryCount groups registrations by beneficiary kind.
type BeneficiaryCount struct {
	Beneficiary   string `json:"beneficiary"`
	Registrations uint64 `json:"registrations"`
}

// EventCount is the number of registrations recorded for one event.
type EventCount struct {
	EventID       uint64 `json:"event_id"`
	Name          string `json:"name"`
	Registrations uint64 `json:"registrations"`
}

// ReviewSentimentCount aggregates review sentiment per event.
type ReviewSentimentCount struct {
	EventID  uint64 `json:"event_id"`
	Name     string `json:"name"`
	Reviews  uint64 `json:"reviews"`
	Positive uint64 `json:"positive"`
	Neutral  uint64 `json:"neutral"`
	Negative uint64 `json:"negative"`
}

// Stats is the complete dashboard snapshot pushed to subscribed admin
// sessions. Every push carries the whole structure; subscribers never see a
// partial or incremental update.
type Stats struct {
	ActiveClubs     []TypeCount            `json:"active_clubs"`
	ArchivedClubs   []TypeCount            `json:"archived_clubs"`
	ActiveSports    []TypeCount            `json:"active_sports"`
	ArchivedSports  []TypeCount            `json:"archived_sports"`
	ClubsByKind     []BeneficiaryCount     `json:"clubs_by_beneficiary"`
	SportsByKind    []BeneficiaryCount     `json:"sports_by_beneficiary"`
	Events          []EventCount           `json:"events"`
	ReviewsByEvent  []ReviewSentimentCount `json:"reviews_by_event"`
	GeneratedAtUnix int64                  `json:"generated_at"`
}
