package domain

import "time"

// Resource kinds an idempotency record can point at. Retention uses them to
// drop records whose resource was purged.
const (
	IdemResourceProposal = "proposal"
	IdemResourceOrder    = "order"
)

// IdemStatusPending marks a claimed key whose create has not finished yet.
const IdemStatusPending = 0

// Idempotency records the resource produced by a create request, keyed by
// (scope, key). A retried request with the same Idempotency-Key inside the TTL
// is answered with the stored resource instead of creating a duplicate.
//
// A record is inserted as pending before the create runs, so the unique
// (scope, key) index admits only one request per key.
type Idempotency struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Scope      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_scope_key,priority:1"`
	Key        string    `gorm:"column:idem_key;type:varchar(200);not null;uniqueIndex:ux_scope_key,priority:2"`
	Resource   string    `gorm:"type:varchar(32);not null;default:'';index:ix_idem_resource,priority:1"`
	ResourceID int64     `gorm:"not null;index:ix_idem_resource,priority:2"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Pending reports whether the create holding this key is still running.
func (i Idempotency) Pending() bool { return i.Status == IdemStatusPending }
