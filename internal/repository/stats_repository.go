package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// StatsRepo computes the dashboard snapshot. All grouped counts run inside
// one read-only transaction so every push reflects a single point-in-time
// state, never an interleaving of a half-committed mutation.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a repo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Stats recomputes the full snapshot.
func (r *StatsRepo) Stats(ctx context.Context) (*model.Stats, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	s := &model.Stats{GeneratedAtUnix: time.Now().UTC().Unix()}

	if s.ActiveClubs, err = typeCounts(ctx, tx, "club_memberships", "club_types", false); err != nil {
		return nil, err
	}
	if s.ArchivedClubs, err = typeCounts(ctx, tx, "club_memberships", "club_types", true); err != nil {
		return nil, err
	}
	if s.ActiveSports, err = typeCounts(ctx, tx, "sport_registrations", "sport_types", false); err != nil {
		return nil, err
	}
	if s.ArchivedSports, err = typeCounts(ctx, tx, "sport_registrations", "sport_types", true); err != nil {
		return nil, err
	}
	if s.ClubsByKind, err = beneficiaryCounts(ctx, tx, "club_memberships"); err != nil {
		return nil, err
	}
	if s.SportsByKind, err = beneficiaryCounts(ctx, tx, "sport_registrations"); err != nil {
		return nil, err
	}
	if s.Events, err = eventCounts(ctx, tx); err != nil {
		return nil, err
	}
	if s.ReviewsByEvent, err = reviewCounts(ctx, tx); err != nil {
		return nil, err
	}
	return s, tx.Commit()
}

func typeCounts(ctx context.Context, tx *sql.Tx, regTable, typeTable string, archived bool) ([]model.TypeCount, error) {
	q := `SELECT t.id, t.name, COUNT(m.id)
	      FROM ` + typeTable + ` t
	      JOIN ` + regTable + ` m ON m.type_id = t.id
	      WHERE t.archived = ?
	      GROUP BY t.id, t.name
	      ORDER BY t.name`
	rows, err := tx.QueryContext(ctx, q, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.TypeCount, 0)
	for rows.Next() {
		var c model.TypeCount
		if err := rows.Scan(&c.TypeID, &c.Name, &c.Registrations); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func beneficiaryCounts(ctx context.Context, tx *sql.Tx, regTable string) ([]model.BeneficiaryCount, error) {
	q := `SELECT beneficiary, COUNT(id) FROM ` + regTable + `
	      GROUP BY beneficiary ORDER BY beneficiary`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.BeneficiaryCount, 0)
	for rows.Next() {
		var c model.BeneficiaryCount
		if err := rows.Scan(&c.Beneficiary, &c.Registrations); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func eventCounts(ctx context.Context, tx *sql.Tx) ([]model.EventCount, error) {
	const q = `SELECT e.id, e.name, COUNT(r.id)
	           FROM events e
	           LEFT JOIN event_registrations r ON r.event_id = e.id
	           GROUP BY e.id, e.name
	           ORDER BY e.name`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.EventCount, 0)
	for rows.Next() {
		var c model.EventCount
		if err := rows.Scan(&c.EventID, &c.Name, &c.Registrations); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func reviewCounts(ctx context.Context, tx *sql.Tx) ([]model.ReviewSentimentCount, error) {
	// Sentiment buckets come from the stored star classification, with the
	// raw rating as fallback for reviews saved while the side-service was
	// down.
	const q = `SELECT e.id, e.name, COUNT(v.id),
	                  SUM(CASE WHEN COALESCE(v.sentiment_stars, v.rating) >= 4 THEN 1 ELSE 0 END),
	                  SUM(CASE WHEN COALESCE(v.sentiment_stars, v.rating) = 3 THEN 1 ELSE 0 END),
	                  SUM(CASE WHEN COALESCE(v.sentiment_stars, v.rating) <= 2 THEN 1 ELSE 0 END)
	           FROM events e
	           JOIN reviews v ON v.event_id = e.id
	           GROUP BY e.id, e.name
	           ORDER BY e.name`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ReviewSentimentCount, 0)
	for rows.Next() {
		var c model.ReviewSentimentCount
		if err := rows.Scan(&c.EventID, &c.Name, &c.Reviews, &c.Positive, &c.Neutral, &c.Negative); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
