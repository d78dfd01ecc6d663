package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuscruz/rideshare-backend/internal/models"
)

// RatingRepository handles rating database operations
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Insert records a rating. The unique constraint on (ride_id, rater_id)
// backstops the has_rated flag and maps to ErrDuplicateRating.
func (r *RatingRepository) Insert(ext sqlx.Ext, rating *models.Rating) error {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	rating.CreatedAt = time.Now()

	query := `
		INSERT INTO ratings (id, ride_id, rater_id, rated_user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := ext.Exec(
		query,
		rating.ID,
		rating.RideID,
		rating.RaterID,
		rating.RatedUserID,
		rating.Rating,
		rating.Comment,
		rating.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert rating: %w", err)
	}

	return nil
}

// RecalculateAverage recomputes the user's average rating from all stored
// ratings and returns the new value.
func (r *RatingRepository) RecalculateAverage(ext sqlx.Ext, userID uuid.UUID) (float64, error) {
	var average float64
	query := `
		UPDATE users
		SET average_rating = (
			SELECT COALESCE(AVG(rating), 0) FROM ratings WHERE rated_user_id = $1
		), updated_at = NOW()
		WHERE id = $1
		RETURNING average_rating
	`

	if err := sqlx.Get(ext, &average, query, userID); err != nil {
		return 0, fmt.Errorf("failed to recalculate average rating: %w", err)
	}

	return average, nil
}

// ListForUser returns the ratings received by the user, newest first
func (r *RatingRepository) ListForUser(userID uuid.UUID) ([]models.Rating, error) {
	ratings := []models.Rating{}
	query := `
		SELECT id, ride_id, rater_id, rated_user_id, rating, comment, created_at
		FROM ratings
		WHERE rated_user_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.Select(&ratings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	return ratings, nil
}
