package models

import "time"

// OrphanedObject is an outbox row for a storage object whose database
// reference was replaced or deleted. A maintenance pass deletes the object
// from the bucket and then removes the row.
type OrphanedObject struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps gorm on the table the raw-SQL layer writes to.
func (OrphanedObject) TableName() string {
	return "orphaned_objects"
}
