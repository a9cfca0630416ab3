package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"checkin_backend/internal/feature/checkin/domain/entity"
	identityentity "checkin_backend/internal/feature/identity/domain/entity"
	identityusecase "checkin_backend/internal/feature/identity/usecase"
	"checkin_backend/internal/shared/sanitize"
)

// DuplicateWindow is the interval after a visit during which the same
// identity may not create another visit.
const DuplicateWindow = 60 * time.Second

// VisitRepository abstracts the visit log for the check-in workflow.
type VisitRepository interface {
	// CreateIfNoneSince appends the visit unless the identity already has a
	// visit with a timestamp at or after cutoff. The check and the insert
	// run in one transaction; a suppressed write returns ErrDuplicateCheckIn.
	CreateIfNoneSince(ctx context.Context, visit *entity.Visit, cutoff time.Time) error
}

// IdentityRepository is the slice of the identity store the check-in
// workflow needs.
type IdentityRepository interface {
	// FindByID retrieves an identity, or identityusecase.ErrIdentityNotFound.
	FindByID(ctx context.Context, id string) (*identityentity.Identity, error)

	// Touch refreshes the identity's last-updated timestamp after a check-in.
	Touch(ctx context.Context, id string) error
}

// IdentityResolver resolves-or-registers an identity for the quick check-in
// flow. Implemented by the identity usecase.
type IdentityResolver interface {
	ResolveOrRegister(ctx context.Context, email, pin, name string, disciplines []string) (*identityentity.Identity, bool, error)
}

// QuickCheckInInput carries the single-step check-in form: identity fields
// and the visit reason together.
type QuickCheckInInput struct {
	Email       string
	PIN         string
	Name        string
	Disciplines []string
	Reason      string
}

// checkinUsecase implements the visit-recording workflow.
type checkinUsecase struct {
	visits     VisitRepository
	identities IdentityRepository
	resolver   IdentityResolver

	// now is injectable for tests.
	now func() time.Time
}

// NewCheckinUsecase wires a checkinUsecase with its dependencies.
func NewCheckinUsecase(visits VisitRepository, identities IdentityRepository, resolver IdentityResolver) *checkinUsecase {
	return &checkinUsecase{
		visits:     visits,
		identities: identities,
		resolver:   resolver,
		now:        time.Now,
	}
}

// validateReason sanitizes the reason and enforces the 10-500 trimmed-rune
// length bounds.
func validateReason(reason string) (string, error) {
	cleaned := sanitize.Clean(reason)
	n := utf8.RuneCountInString(cleaned)
	if n < entity.ReasonMinLength || n > entity.ReasonMaxLength {
		return "", &identityusecase.ValidationError{
			Field:   "reason",
			Message: fmt.Sprintf("reason must be between %d and %d characters", entity.ReasonMinLength, entity.ReasonMaxLength),
		}
	}
	return cleaned, nil
}

// CheckIn records a visit for an already-resolved identity.
//
// The identity's current disciplines are snapshotted onto the visit, so later
// profile edits do not rewrite history. The duplicate check and the insert
// are one transaction in the repository, so two concurrent check-ins inside
// the window cannot both land.
func (u *checkinUsecase) CheckIn(ctx context.Context, identityID, reason string) (*entity.Visit, error) {
	cleaned, err := validateReason(reason)
	if err != nil {
		return nil, err
	}

	identity, err := u.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	visit := &entity.Visit{
		ID:          uuid.NewString(),
		IdentityID:  identity.ID,
		VisitedAt:   now,
		Reason:      cleaned,
		Disciplines: identity.Disciplines,
	}
	if err := u.visits.CreateIfNoneSince(ctx, visit, now.Add(-DuplicateWindow)); err != nil {
		return nil, err
	}

	// Best effort: the visit is already recorded, a failed touch only
	// leaves the identity timestamp stale.
	if err := u.identities.Touch(ctx, identity.ID); err != nil {
		slog.Warn("failed to refresh identity timestamp", "error", err, "identity_id", identity.ID)
	}

	return visit, nil
}

// QuickCheckIn is the single-step variant: it resolves or registers the
// identity from the submitted form, then records the visit under the same
// validation bounds and suppression window as CheckIn.
func (u *checkinUsecase) QuickCheckIn(ctx context.Context, in QuickCheckInInput) (*entity.Visit, error) {
	// Validate the reason before touching the identity store, so a bad
	// reason never leaves a freshly registered identity behind.
	if _, err := validateReason(in.Reason); err != nil {
		return nil, err
	}

	identity, _, err := u.resolver.ResolveOrRegister(ctx, in.Email, in.PIN, in.Name, in.Disciplines)
	if err != nil {
		return nil, err
	}
	return u.CheckIn(ctx, identity.ID, in.Reason)
}
