package models

import "time"

// Base holds the timestamps the store stamps on every document.
type Base struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Stamp sets both timestamps to now (UTC).
func (b *Base) Stamp(now time.Time) {
	b.CreatedAt = now.UTC()
	b.UpdatedAt = now.UTC()
}
