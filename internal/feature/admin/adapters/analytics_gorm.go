// Package adapters provides the read-side repository for the admin feature.
package adapters

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"

	"checkin_backend/internal/feature/admin/usecase"
	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/identity/domain/entity"
)

// analyticsGorm is the GORM implementation of usecase.AnalyticsRepository.
// It only reads; all writes to the visit log go through the checkin feature.
type analyticsGorm struct {
	db *gorm.DB
}

var _ usecase.AnalyticsRepository = (*analyticsGorm)(nil)

// NewAnalyticsGorm creates an analyticsGorm bound to the given connection.
func NewAnalyticsGorm(db *gorm.DB) *analyticsGorm {
	return &analyticsGorm{db: db}
}

// CountVisitsSince counts visits with a timestamp at or after since.
func (r *analyticsGorm) CountVisitsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&visitentity.Visit{}).
		Where("visited_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DisciplineSnapshots returns the disciplines-at-visit column of every visit.
func (r *analyticsGorm) DisciplineSnapshots(ctx context.Context) ([]entity.DisciplineList, error) {
	var raw []string
	err := r.db.WithContext(ctx).
		Model(&visitentity.Visit{}).
		Pluck("disciplines", &raw).Error
	if err != nil {
		return nil, err
	}
	snapshots := make([]entity.DisciplineList, 0, len(raw))
	for _, s := range raw {
		var list entity.DisciplineList
		if err := list.Scan(s); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, list)
	}
	return snapshots, nil
}

// visitRecordRow is the scan target for joined visit queries.
type visitRecordRow struct {
	ID          string
	IdentityID  string
	VisitedAt   time.Time
	Reason      string
	Disciplines entity.DisciplineList
	Name        string
	Email       string
}

func (row *visitRecordRow) toRecord() usecase.VisitRecord {
	return usecase.VisitRecord{
		ID:          row.ID,
		IdentityID:  row.IdentityID,
		VisitedAt:   row.VisitedAt,
		Reason:      row.Reason,
		Disciplines: row.Disciplines,
		Name:        row.Name,
		Email:       row.Email,
	}
}

// joinedVisits is the base query for visit rows joined with the owning
// identity's current name and email.
func (r *analyticsGorm) joinedVisits(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("visits").
		Select("visits.id, visits.identity_id, visits.visited_at, visits.reason, visits.disciplines, identities.name, identities.email").
		Joins("JOIN identities ON identities.id = visits.identity_id")
}

// RecentVisits returns the newest joined visits, descending by timestamp.
func (r *analyticsGorm) RecentVisits(ctx context.Context, limit int) ([]usecase.VisitRecord, error) {
	var rows []visitRecordRow
	err := r.joinedVisits(ctx).
		Order("visits.visited_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	records := make([]usecase.VisitRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

// FilteredVisits returns the joined visits matching the filter, newest
// first. Filters are conjunctive. The discipline filter matches the
// JSON-encoded snapshot column by its quoted literal, which works on both
// MySQL and SQLite without JSON functions.
func (r *analyticsGorm) FilteredVisits(ctx context.Context, f usecase.ExportFilter) ([]usecase.VisitRecord, error) {
	q := r.joinedVisits(ctx)
	if f.Start != nil {
		q = q.Where("visits.visited_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("visits.visited_at < ?", *f.End)
	}
	if f.Discipline != "" {
		literal, err := json.Marshal(f.Discipline)
		if err != nil {
			return nil, err
		}
		q = q.Where("visits.disciplines LIKE ?", "%"+string(literal)+"%")
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(identities.name) LIKE ? OR LOWER(identities.email) LIKE ?", term, term)
	}

	var rows []visitRecordRow
	if err := q.Order("visits.visited_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]usecase.VisitRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

// identityRowScan is the scan target for the identity listing.
type identityRowScan struct {
	ID            string
	Email         string
	Name          string
	PreferredName string
	Workplace     string
	Disciplines   entity.DisciplineList
	CreatedAt     time.Time
	VisitCount    int64
	LastVisit     *time.Time
}

// ListIdentities returns one page of identities with visit counts and the
// total identity count. sortClause must come from the usecase's whitelist.
func (r *analyticsGorm) ListIdentities(ctx context.Context, limit, offset int, sortClause string) ([]usecase.IdentityRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Identity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []identityRowScan
	err := r.db.WithContext(ctx).
		Table("identities").
		Select("identities.id, identities.email, identities.name, identities.preferred_name, identities.workplace, identities.disciplines, identities.created_at, COUNT(visits.id) AS visit_count, MAX(visits.visited_at) AS last_visit").
		Joins("LEFT JOIN visits ON visits.identity_id = identities.id").
		Group("identities.id").
		Order(sortClause).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]usecase.IdentityRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.IdentityRow{
			ID:            row.ID,
			Email:         row.Email,
			Name:          row.Name,
			PreferredName: row.PreferredName,
			Workplace:     row.Workplace,
			Disciplines:   row.Disciplines,
			CreatedAt:     row.CreatedAt,
			VisitCount:    row.VisitCount,
			LastVisit:     row.LastVisit,
		})
	}
	return out, total, nil
}

// VisitsByIdentity returns an identity's visits, newest first.
func (r *analyticsGorm) VisitsByIdentity(ctx context.Context, identityID string) ([]*visitentity.Visit, error) {
	var visits []*visitentity.Visit
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("visited_at DESC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}
