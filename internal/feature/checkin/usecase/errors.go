// Package usecase implements the business logic for the checkin feature.
package usecase

import "errors"

var (
	// ErrDuplicateCheckIn is returned when the identity already has a visit
	// inside the duplicate-suppression window.
	ErrDuplicateCheckIn = errors.New("already checked in, please wait a minute")
)
