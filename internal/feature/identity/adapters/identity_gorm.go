// Package adapters provides the repository implementations for the identity feature.
package adapters

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"checkin_backend/internal/feature/identity/domain/entity"
	"checkin_backend/internal/feature/identity/usecase"
)

// identityGorm is the GORM implementation of usecase.IdentityRepository.
type identityGorm struct {
	db *gorm.DB
}

// Compile-time check that identityGorm satisfies the repository interface.
var _ usecase.IdentityRepository = (*identityGorm)(nil)

// NewIdentityGorm creates an identityGorm bound to the given connection.
func NewIdentityGorm(db *gorm.DB) *identityGorm {
	return &identityGorm{db: db}
}

// isDuplicateKey reports whether err is a unique-index violation.
// MySQL error 1062 is checked directly; gorm.ErrDuplicatedKey covers
// drivers with error translation enabled (SQLite in tests).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Create inserts a new identity. The unique index on email turns a
// duplicate registration into usecase.ErrEmailAlreadyExists.
func (r *identityGorm) Create(ctx context.Context, identity *entity.Identity) error {
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail retrieves an identity by its normalized email.
func (r *identityGorm) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	var identity entity.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrIdentityNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// FindByID retrieves an identity by its ID.
func (r *identityGorm) FindByID(ctx context.Context, id string) (*entity.Identity, error) {
	var identity entity.Identity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrIdentityNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// FindAll retrieves every identity, oldest first.
func (r *identityGorm) FindAll(ctx context.Context) ([]*entity.Identity, error) {
	var identities []*entity.Identity
	if err := r.db.WithContext(ctx).Order("created_at").Find(&identities).Error; err != nil {
		return nil, err
	}
	return identities, nil
}

// Update saves profile changes. GORM refreshes UpdatedAt on save.
func (r *identityGorm) Update(ctx context.Context, identity *entity.Identity) error {
	if err := r.db.WithContext(ctx).Save(identity).Error; err != nil {
		return err
	}
	return nil
}

// Touch refreshes the identity's UpdatedAt timestamp, used when a check-in
// succeeds without a profile edit.
func (r *identityGorm) Touch(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Identity{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrIdentityNotFound
	}
	return nil
}
