package database

import (
	"database/sql"
	"fmt"
	"time"

	"hanapbahay/server/internal/models"
)

func (d *Database) CreateReview(review *models.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	_, err := d.db.Exec(`
        INSERT INTO reviews (id, hotel_id, user_id, user_email, rating, comment, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `,
		review.ID,
		review.HotelID,
		review.UserID,
		review.UserEmail,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetReviewsByHotel returns a listing's reviews, newest first.
func (d *Database) GetReviewsByHotel(hotelID string) ([]models.Review, error) {
	rows, err := d.db.Query(`
        SELECT id, hotel_id, user_id, user_email, rating, comment, created_at
        FROM reviews
        WHERE hotel_id = ?
        ORDER BY created_at DESC
    `, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		var rating sql.NullInt64

		err := rows.Scan(
			&r.ID,
			&r.HotelID,
			&r.UserID,
			&r.UserEmail,
			&rating,
			&r.Comment,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		if rating.Valid {
			v := int(rating.Int64)
			r.Rating = &v
		}

		reviews = append(reviews, r)
	}

	return reviews, rows.Err()
}
