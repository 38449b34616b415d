package database

import "fmt"

// AddOrphanedObject records a storage object whose database reference was
// just replaced or deleted. The maintenance pass deletes the blob later, so
// the request itself never blocks on storage cleanup.
func (d *Database) AddOrphanedObject(bucket, key string) error {
	_, err := d.db.Exec(`
        INSERT INTO orphaned_objects (bucket, key) VALUES (?, ?)
    `, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to record orphaned object: %w", err)
	}
	return nil
}

func (d *Database) CountOrphanedObjects() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM orphaned_objects`).Scan(&count)
	return count, err
}
