// Package entity defines the domain entities for the checkin feature.
package entity

import (
	"time"

	identityentity "checkin_backend/internal/feature/identity/domain/entity"
)

// Reason length bounds, counted in runes after trimming.
const (
	ReasonMinLength = 10
	ReasonMaxLength = 500
)

// Visit represents one check-in event. Visits are append-only: they are
// never mutated or deleted after creation.
type Visit struct {
	// ID is the opaque unique identifier (UUID) for the visit.
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// IdentityID references the owning identity. The composite index with
	// VisitedAt serves the duplicate-suppression check and history reads.
	IdentityID string `gorm:"size:36;not null;index:idx_visits_identity_time,priority:1" json:"identity_id"`

	// VisitedAt is the check-in timestamp.
	VisitedAt time.Time `gorm:"not null;index;index:idx_visits_identity_time,priority:2" json:"visited_at"`

	// Reason is the stated purpose of the visit, 10-500 trimmed characters.
	Reason string `gorm:"size:500;not null" json:"reason"`

	// Disciplines is the snapshot of the identity's disciplines at the time
	// of the visit. It may diverge from the identity's current set if the
	// profile is edited later.
	Disciplines identityentity.DisciplineList `gorm:"type:text;not null" json:"disciplines"`
}

// TableName pins the table name so admin queries can join against it.
func (Visit) TableName() string { return "visits" }
