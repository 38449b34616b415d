package models

import "time"

// Review is an insert-only rating/comment attached to a listing. UserEmail is
// denormalized at write time so review lists render without a join.
type Review struct {
	ID        string    `json:"id"`
	HotelID   string    `json:"hotel_id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Rating    *int      `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
