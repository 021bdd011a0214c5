package models

import "time"

// AuditFields holds creation metadata shared by persisted records.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string    `db:"created_by"`
}
