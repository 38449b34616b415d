package models

import (
	"strings"
	"time"
)

// othersSeparator joins the additional image URLs into the single delimited
// column the hotels table stores them in. URLs never contain commas, so the
// split is unambiguous.
const othersSeparator = ","

// Listing is a rentable property (hotel, apartment or dormitory) owned by a
// Landlord account.
type Listing struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Price        float64   `json:"price"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	FrontDisplay string    `json:"frontdisplay"`
	Room         string    `json:"room"`
	Others       []string  `json:"others"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasCoordinates reports whether the listing was successfully geocoded.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// ImageURLs returns every object URL referenced by the listing, in display
// order. Used when queueing blobs for cleanup on delete.
func (l *Listing) ImageURLs() []string {
	var urls []string
	if l.FrontDisplay != "" {
		urls = append(urls, l.FrontDisplay)
	}
	if l.Room != "" {
		urls = append(urls, l.Room)
	}
	urls = append(urls, l.Others...)
	return urls
}

// JoinOthers flattens the ordered additional-image URLs for persistence.
func JoinOthers(urls []string) string {
	return strings.Join(urls, othersSeparator)
}

// SplitOthers restores the ordered list from the stored column.
func SplitOthers(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, othersSeparator)
}
