package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy is the console user id taken from the bearer token subject.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}
