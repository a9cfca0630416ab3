// Package adapters provides the repository implementations for the checkin feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/checkin/usecase"
	identityusecase "checkin_backend/internal/feature/identity/usecase"
)

// visitGorm is the GORM implementation of the visit log.
type visitGorm struct {
	db *gorm.DB
}

// Compile-time checks against the consumer-defined interfaces.
var (
	_ usecase.VisitRepository     = (*visitGorm)(nil)
	_ identityusecase.VisitReader = (*visitGorm)(nil)
)

// NewVisitGorm creates a visitGorm bound to the given connection.
func NewVisitGorm(db *gorm.DB) *visitGorm {
	return &visitGorm{db: db}
}

// windowQuery selects the identity's visits at or after cutoff, with a
// locking read. A plain count in a transaction is a non-locking snapshot
// read on InnoDB, so two concurrent check-ins would both count zero; FOR
// UPDATE makes the next-key lock on idx_visits_identity_time block the
// second transaction until the first commits. SQLite serializes writers
// and its driver drops the clause.
func windowQuery(tx *gorm.DB, identityID string, cutoff time.Time) *gorm.DB {
	return tx.Model(&entity.Visit{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("identity_id = ? AND visited_at >= ?", identityID, cutoff)
}

// CreateIfNoneSince appends the visit unless the identity already has one at
// or after cutoff. The locking window check and the insert share a
// transaction, which closes the read-then-write race between two concurrent
// check-ins for the same identity.
func (r *visitGorm) CreateIfNoneSince(ctx context.Context, visit *entity.Visit, cutoff time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := windowQuery(tx, visit.IdentityID, cutoff).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return usecase.ErrDuplicateCheckIn
		}
		return tx.Create(visit).Error
	})
}

// LatestByIdentity returns the identity's most recent visit, or (nil, nil)
// when the identity has never checked in.
func (r *visitGorm) LatestByIdentity(ctx context.Context, identityID string) (*entity.Visit, error) {
	var visit entity.Visit
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("visited_at DESC").
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// ListByIdentity returns all visits for an identity, newest first.
func (r *visitGorm) ListByIdentity(ctx context.Context, identityID string) ([]*entity.Visit, error) {
	var visits []*entity.Visit
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("visited_at DESC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}
