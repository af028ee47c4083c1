package repository

import (
	"context"
	"database/sql"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// ReviewRepo persists event reviews. One review per matricule and event,
// enforced by a unique key.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a repo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review with its sentiment classification.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO reviews
	           (event_id, user_id, matricule, nom, prenom, rating, comment,
	            sentiment_label, sentiment_score, sentiment_stars)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var label any
	var score any
	var stars any
	if rev.Sentiment != nil {
		label, score, stars = rev.Sentiment.Label, rev.Sentiment.Score, rev.Sentiment.Stars
	}
	res, err := r.db.ExecContext(ctx, q, rev.EventID, rev.UserID, rev.Matricule, rev.Nom,
		rev.Prenom, rev.Rating, rev.Comment, label, score, stars)
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
	rev.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM reviews WHERE id = ?`, rev.ID).Scan(&rev.CreatedAt)
}

// ListByEvent returns all reviews for one event, newest first.
func (r *ReviewRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Review, error) {
	const q = `SELECT id, event_id, user_id, matricule, nom, prenom, rating, comment,
	                  sentiment_label, sentiment_score, sentiment_stars, created_at
	           FROM reviews WHERE event_id = ?
	           ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		var userID sql.NullInt64
		var label sql.NullString
		var score sql.NullFloat64
		var stars sql.NullInt64
		if err := rows.Scan(&rev.ID, &rev.EventID, &userID, &rev.Matricule, &rev.Nom,
			&rev.Prenom, &rev.Rating, &rev.Comment, &label, &score, &stars, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			rev.UserID = &uid
		}
		if label.Valid {
			rev.Sentiment = &model.Sentiment{
				Label: label.String,
				Score: score.Float64,
				Stars: uint8(stars.Int64),
			}
		}
		items = append(items, rev)
	}
	return items, rows.Err()
}
