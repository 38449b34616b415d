package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hanapbahay/server/internal/models"
)

const listingColumns = `
        id, user_id, name, description, location, price,
        latitude, longitude, frontdisplay, room, others, created_at`

func (d *Database) CreateListing(listing *models.Listing) error {
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}

	_, err := d.db.Exec(`
        INSERT INTO hotels
            (id, user_id, name, description, location, price,
             latitude, longitude, frontdisplay, room, others, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		listing.ID,
		listing.UserID,
		listing.Name,
		listing.Description,
		listing.Location,
		listing.Price,
		listing.Latitude,
		listing.Longitude,
		nullIfEmpty(listing.FrontDisplay),
		nullIfEmpty(listing.Room),
		nullIfEmpty(models.JoinOthers(listing.Others)),
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

func (d *Database) UpdateListing(listing *models.Listing) error {
	result, err := d.db.Exec(`
        UPDATE hotels
        SET name = ?, description = ?, location = ?, price = ?,
            latitude = ?, longitude = ?, frontdisplay = ?, room = ?, others = ?
        WHERE id = ?
    `,
		listing.Name,
		listing.Description,
		listing.Location,
		listing.Price,
		listing.Latitude,
		listing.Longitude,
		nullIfEmpty(listing.FrontDisplay),
		nullIfEmpty(listing.Room),
		nullIfEmpty(models.JoinOthers(listing.Others)),
		listing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeleteListing(id string) error {
	result, err := d.db.Exec(`DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetListingByID(id string) (*models.Listing, error) {
	row := d.db.QueryRow(`SELECT `+listingColumns+` FROM hotels WHERE id = ?`, id)
	listing, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}
	return listing, nil
}

func (d *Database) GetAllListings() ([]models.Listing, error) {
	return d.queryListings(`
        SELECT ` + listingColumns + `
        FROM hotels
        ORDER BY created_at DESC
    `)
}

func (d *Database) GetListingsByOwner(userID string) ([]models.Listing, error) {
	return d.queryListings(`
        SELECT `+listingColumns+`
        FROM hotels
        WHERE user_id = ?
        ORDER BY created_at DESC
    `, userID)
}

// likeEscaper neutralizes LIKE metacharacters so a user-supplied prefix
// always matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchListingsByLocation matches listings whose location starts with the
// given prefix, case-insensitively.
func (d *Database) SearchListingsByLocation(prefix string) ([]models.Listing, error) {
	return d.queryListings(`
        SELECT `+listingColumns+`
        FROM hotels
        WHERE LOWER(location) LIKE LOWER(?) || '%' ESCAPE '\'
        ORDER BY created_at DESC
    `, likeEscaper.Replace(prefix))
}

// GetListingsWithCoordinates returns every listing that has been geocoded,
// for the nearby search.
func (d *Database) GetListingsWithCoordinates() ([]models.Listing, error) {
	return d.queryListings(`
        SELECT ` + listingColumns + `
        FROM hotels
        WHERE latitude IS NOT NULL AND longitude IS NOT NULL
    `)
}

func (d *Database) queryListings(query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var description sql.NullString
	var latitude, longitude sql.NullFloat64
	var frontDisplay, room, others sql.NullString

	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&description,
		&l.Location,
		&l.Price,
		&latitude,
		&longitude,
		&frontDisplay,
		&room,
		&others,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		l.Description = description.String
	}
	if latitude.Valid {
		lat := latitude.Float64
		l.Latitude = &lat
	}
	if longitude.Valid {
		lon := longitude.Float64
		l.Longitude = &lon
	}
	if frontDisplay.Valid {
		l.FrontDisplay = frontDisplay.String
	}
	if room.Valid {
		l.Room = room.String
	}
	if others.Valid {
		l.Others = models.SplitOthers(others.String)
	}

	return &l, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
