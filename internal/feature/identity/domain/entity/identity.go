// Package entity defines the domain entities for the identity feature.
package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Discipline is one value of the fixed discipline enumeration.
type Discipline string

// The canonical discipline list. Validation and the analytics breakdown
// both use exactly this set.
const (
	DisciplineSoftware   Discipline = "Software"
	DisciplineHardware   Discipline = "Hardware"
	DisciplineArt        Discipline = "Art"
	DisciplineDesign     Discipline = "Design"
	DisciplineFashion    Discipline = "Fashion"
	DisciplineAIML       Discipline = "AI/ML"
	DisciplinePhotoVideo Discipline = "Photographer/Videographer"
	DisciplineOther      Discipline = "Other"
)

// AllDisciplines returns every valid discipline in display order.
func AllDisciplines() []Discipline {
	return []Discipline{
		DisciplineSoftware,
		DisciplineHardware,
		DisciplineArt,
		DisciplineDesign,
		DisciplineFashion,
		DisciplineAIML,
		DisciplinePhotoVideo,
		DisciplineOther,
	}
}

// Valid reports whether d is a member of the fixed enumeration.
func (d Discipline) Valid() bool {
	for _, v := range AllDisciplines() {
		if d == v {
			return true
		}
	}
	return false
}

// DisciplineList is a set of disciplines. It is persisted as a JSON array
// in a TEXT column so the same column works for MySQL and SQLite.
type DisciplineList []Discipline

// Value implements driver.Valuer for GORM persistence.
func (l DisciplineList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode disciplines: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for GORM persistence.
func (l *DisciplineList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported disciplines column type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether the list includes d.
func (l DisciplineList) Contains(d Discipline) bool {
	for _, v := range l {
		if v == d {
			return true
		}
	}
	return false
}

// Join renders the list as a single string, e.g. for CSV output.
func (l DisciplineList) Join(sep string) string {
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = string(d)
	}
	return strings.Join(parts, sep)
}

// Identity represents a registered visitor.
// There is exactly one Identity per unique contact email.
type Identity struct {
	// ID is the opaque unique identifier (UUID) for the identity.
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Email is the case-normalized contact address. It is unique across
	// all identities and immutable after registration.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Name is the visitor's display name.
	Name string `gorm:"size:255;not null" json:"name"`

	// PreferredName is an optional preferred form of address.
	PreferredName string `gorm:"size:255" json:"preferred_name,omitempty"`

	// Workplace is an optional free-text affiliation.
	Workplace string `gorm:"size:255" json:"workplace,omitempty"`

	// Disciplines is the visitor's current discipline set. Never empty.
	Disciplines DisciplineList `gorm:"type:text;not null" json:"disciplines"`

	// PINHash is the bcrypt hash of the 4-digit PIN.
	// Plaintext PINs are never stored.
	PINHash string `gorm:"size:255;not null" json:"-"`

	// CreatedAt is the timestamp when the identity was registered.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last profile edit or check-in.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name so admin queries can join against it.
func (Identity) TableName() string { return "identities" }
