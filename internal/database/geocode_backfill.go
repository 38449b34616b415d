package database

import "fmt"

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	GeocodeAddress(location string) (float64, float64, error)
}

// UpdateMissingCoordinates geocodes listings that were persisted without
// coordinates (rows that predate the uniform reject-on-unresolvable policy).
// Lookup failures skip the row; the next pass retries it.
func (d *Database) UpdateMissingCoordinates(geocoder Geocoder) error {
	rows, err := d.db.Query(`
        SELECT id, location
        FROM hotels
        WHERE latitude IS NULL OR longitude IS NULL
    `)
	if err != nil {
		return fmt.Errorf("failed to query listings without coordinates: %w", err)
	}

	type pending struct {
		id       string
		location string
	}
	var listings []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.location); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(listings) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE hotels SET latitude = ?, longitude = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var failed int
	for _, p := range listings {
		lat, lon, err := geocoder.GeocodeAddress(p.location)
		if err != nil {
			failed++
			continue
		}

		if _, err := stmt.Exec(lat, lon, p.id); err != nil {
			return fmt.Errorf("failed to update coordinates: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("coordinates backfill skipped %d of %d listings", failed, len(listings))
	}
	return nil
}
