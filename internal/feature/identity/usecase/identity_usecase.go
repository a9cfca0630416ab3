package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/identity/domain/entity"
	"checkin_backend/internal/shared/sanitize"
)

// pinPattern is the required credential format: exactly 4 decimal digits.
var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// dummyPINHash is compared against when no identity matches, so that the
// authenticate path performs a bcrypt comparison whether or not the email
// is registered.
const dummyPINHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// IdentityRepository abstracts the persistence layer for identities.
// Following Go convention, the interface is defined by the consumer
// (usecase), not the provider (adapters).
type IdentityRepository interface {
	// Create persists a new identity. It returns ErrEmailAlreadyExists
	// when an identity with the same email is already stored.
	Create(ctx context.Context, identity *entity.Identity) error

	// FindByEmail retrieves the identity matching the given (normalized)
	// email, or ErrIdentityNotFound.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)

	// FindByID retrieves the identity with the given ID, or ErrIdentityNotFound.
	FindByID(ctx context.Context, id string) (*entity.Identity, error)

	// FindAll retrieves every identity. Used by the PIN-first lookup flow,
	// which has no indexable key to search by.
	FindAll(ctx context.Context) ([]*entity.Identity, error)

	// Update persists profile changes to an existing identity.
	Update(ctx context.Context, identity *entity.Identity) error
}

// VisitReader is the slice of the visit log the identity feature needs:
// the most recent visit, returned on email lookup for pre-fill convenience.
type VisitReader interface {
	// LatestByIdentity returns the most recent visit for the identity,
	// or (nil, nil) when the identity has never checked in.
	LatestByIdentity(ctx context.Context, identityID string) (*visitentity.Visit, error)
}

// LookupResult is the outcome of an email lookup. A nil Identity means no
// identity matched; that is not an error.
type LookupResult struct {
	Identity  *entity.Identity
	LastVisit *visitentity.Visit
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email         string
	Name          string
	PreferredName string
	Workplace     string
	PIN           string
	Disciplines   []string
}

// UpdateProfileInput carries the fields of a profile update. Email is
// immutable and therefore absent. An empty PIN means "keep the current one".
type UpdateProfileInput struct {
	IdentityID    string
	Name          string
	PreferredName string
	Workplace     string
	PIN           string
	Disciplines   []string
}

// identityUsecase implements registration, lookup and authentication.
type identityUsecase struct {
	identities IdentityRepository
	visits     VisitReader
}

// NewIdentityUsecase wires an identityUsecase with its repositories.
func NewIdentityUsecase(identities IdentityRepository, visits VisitReader) *identityUsecase {
	return &identityUsecase{
		identities: identities,
		visits:     visits,
	}
}

// NormalizeEmail canonicalizes an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePIN checks the 4-decimal-digit credential format.
func validatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return &ValidationError{Field: "pin", Message: "PIN must be exactly 4 digits"}
	}
	return nil
}

// parseDisciplines validates raw discipline strings against the fixed
// enumeration. The set must be non-empty.
func parseDisciplines(raw []string) (entity.DisciplineList, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Field: "disciplines", Message: "select at least one discipline"}
	}
	list := make(entity.DisciplineList, 0, len(raw))
	for _, s := range raw {
		d := entity.Discipline(strings.TrimSpace(s))
		if !d.Valid() {
			return nil, &ValidationError{Field: "disciplines", Message: fmt.Sprintf("unknown discipline %q", s)}
		}
		if !list.Contains(d) {
			list = append(list, d)
		}
	}
	return list, nil
}

// hashPIN derives the stored credential from a plaintext PIN.
// bcrypt embeds a freshly generated random salt in every hash.
func hashPIN(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new identity with a hashed credential.
func (u *identityUsecase) Register(ctx context.Context, in RegisterInput) (*entity.Identity, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "email is required"}
	}
	name := sanitize.Clean(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := validatePIN(in.PIN); err != nil {
		return nil, err
	}
	disciplines, err := parseDisciplines(in.Disciplines)
	if err != nil {
		return nil, err
	}
	hash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	identity := &entity.Identity{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		PreferredName: sanitize.Clean(in.PreferredName),
		Workplace:     sanitize.Clean(in.Workplace),
		Disciplines:   disciplines,
		PINHash:       hash,
	}
	if err := u.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Authenticate verifies an email/PIN pair. The three failure cases are
// distinguished for the caller: ErrIdentityNotFound, ErrNoCredential and
// ErrPINMismatch. A bcrypt comparison always runs, even when the identity
// does not exist, to keep timing independent of email existence.
func (u *identityUsecase) Authenticate(ctx context.Context, email, pin string) (*entity.Identity, error) {
	identity, err := u.identities.FindByEmail(ctx, NormalizeEmail(email))

	hash := dummyPINHash
	if err == nil && identity.PINHash != "" {
		hash = identity.PINHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))

	switch {
	case errors.Is(err, ErrIdentityNotFound):
		return nil, ErrIdentityNotFound
	case err != nil:
		return nil, err
	case identity.PINHash == "":
		return nil, ErrNoCredential
	case compareErr != nil:
		return nil, ErrPINMismatch
	}
	return identity, nil
}

// LookupByEmail resolves an identity by email. A missing identity is not an
// error: the result carries a nil Identity. When the identity exists, its
// most recent visit (if any) is attached for pre-fill convenience.
func (u *identityUsecase) LookupByEmail(ctx context.Context, email string) (*LookupResult, error) {
	identity, err := u.identities.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrIdentityNotFound) {
		return &LookupResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	last, err := u.visits.LatestByIdentity(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return &LookupResult{Identity: identity, LastVisit: last}, nil
}

// LookupByPIN resolves an identity by PIN alone. PINs are stored hashed, so
// this scans all identities and compares each hash; acceptable for the small
// populations this system serves. A nil result means no identity matched.
func (u *identityUsecase) LookupByPIN(ctx context.Context, pin string) (*entity.Identity, error) {
	if err := validatePIN(pin); err != nil {
		return nil, err
	}
	identities, err := u.identities.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, identity := range identities {
		if identity.PINHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(identity.PINHash), []byte(pin)) == nil {
			return identity, nil
		}
	}
	return nil, nil
}

// UpdateProfile edits name, workplace, disciplines and optionally the PIN.
// Email is immutable. Supplying a new PIN re-hashes it with a fresh salt;
// omitting it keeps the stored credential.
func (u *identityUsecase) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*entity.Identity, error) {
	identity, err := u.identities.FindByID(ctx, in.IdentityID)
	if err != nil {
		return nil, err
	}

	name := sanitize.Clean(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	disciplines, err := parseDisciplines(in.Disciplines)
	if err != nil {
		return nil, err
	}
	if in.PIN != "" {
		if err := validatePIN(in.PIN); err != nil {
			return nil, err
		}
		hash, err := hashPIN(in.PIN)
		if err != nil {
			return nil, err
		}
		identity.PINHash = hash
	}

	identity.Name = name
	identity.PreferredName = sanitize.Clean(in.PreferredName)
	identity.Workplace = sanitize.Clean(in.Workplace)
	identity.Disciplines = disciplines

	if err := u.identities.Update(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ResolveOrRegister backs the quick check-in flow: it resolves the identity
// by email, verifying the PIN when the identity already exists, and registers
// a new identity otherwise. The returned bool reports whether a registration
// happened.
func (u *identityUsecase) ResolveOrRegister(ctx context.Context, email, pin, name string, disciplines []string) (*entity.Identity, bool, error) {
	identity, err := u.identities.FindByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		if identity.PINHash == "" {
			return nil, false, ErrNoCredential
		}
		if bcrypt.CompareHashAndPassword([]byte(identity.PINHash), []byte(pin)) != nil {
			return nil, false, ErrPINMismatch
		}
		return identity, false, nil
	}
	if !errors.Is(err, ErrIdentityNotFound) {
		return nil, false, err
	}

	created, err := u.Register(ctx, RegisterInput{
		Email:       email,
		Name:        name,
		PIN:         pin,
		Disciplines: disciplines,
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
