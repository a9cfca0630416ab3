// Package usecase implements the admin-facing business logic: analytics
// aggregation, the identity listing and the CSV export.
package usecase

import (
	"context"
	"time"

	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/identity/domain/entity"
)

// RecentLimit is how many visits the activity feed returns.
const RecentLimit = 20

// VisitRecord is one visit joined with its owning identity's current name
// and email (not the historical snapshot).
type VisitRecord struct {
	ID          string                `json:"id"`
	IdentityID  string                `json:"identity_id"`
	VisitedAt   time.Time             `json:"visited_at"`
	Reason      string                `json:"reason"`
	Disciplines entity.DisciplineList `json:"disciplines"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
}

// DisciplineCount is one row of the per-discipline breakdown.
type DisciplineCount struct {
	Discipline entity.Discipline `json:"discipline"`
	Count      int64             `json:"count"`
}

// Summary is the aggregate view for the admin dashboard.
//
// A visit carrying several disciplines increments several counters, so the
// breakdown counts are not mutually exclusive and may sum to more than
// TotalCount.
type Summary struct {
	TodayCount  int64             `json:"today_count"`
	WeekCount   int64             `json:"week_count"`
	MonthCount  int64             `json:"month_count"`
	TotalCount  int64             `json:"total_count"`
	Disciplines []DisciplineCount `json:"discipline_breakdown"`
	Recent      []VisitRecord     `json:"recent_activity"`
}

// ExportFilter narrows the CSV export. Zero-valued fields are ignored and
// the set filters are combined with AND.
type ExportFilter struct {
	// Start keeps visits at or after this instant.
	Start *time.Time
	// End keeps visits strictly before this instant.
	End *time.Time
	// Discipline keeps visits whose snapshot includes this discipline.
	Discipline entity.Discipline
	// Search matches case-insensitively against the identity's current
	// name or email (substring).
	Search string
}

// PageRequest describes one page of the identity listing.
type PageRequest struct {
	Page    int
	PerPage int
	Sort    string
	Order   string
}

// IdentityRow is one row of the identity listing: the identity plus its
// visit count and last visit time.
type IdentityRow struct {
	ID            string                `json:"id"`
	Email         string                `json:"email"`
	Name          string                `json:"name"`
	PreferredName string                `json:"preferred_name,omitempty"`
	Workplace     string                `json:"workplace,omitempty"`
	Disciplines   entity.DisciplineList `json:"disciplines"`
	CreatedAt     time.Time             `json:"created_at"`
	VisitCount    int64                 `json:"visit_count"`
	LastVisit     *time.Time            `json:"last_visit,omitempty"`
}

// IdentityPage is one page of the identity listing plus paging metadata.
type IdentityPage struct {
	Identities []IdentityRow `json:"identities"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// IdentityHistory is one identity with its full visit history.
type IdentityHistory struct {
	Identity *entity.Identity     `json:"identity"`
	Visits   []*visitentity.Visit `json:"visits"`
}

// AnalyticsRepository abstracts the read side of the visit log for the
// admin feature. Defined here, implemented in adapters.
type AnalyticsRepository interface {
	// CountVisitsSince counts visits with a timestamp at or after since.
	CountVisitsSince(ctx context.Context, since time.Time) (int64, error)

	// DisciplineSnapshots returns the disciplines-at-visit column of every
	// visit. The breakdown is computed in memory because the snapshot is a
	// JSON-encoded set.
	DisciplineSnapshots(ctx context.Context) ([]entity.DisciplineList, error)

	// RecentVisits returns the newest visits joined with identity name and
	// email, descending by timestamp.
	RecentVisits(ctx context.Context, limit int) ([]VisitRecord, error)

	// FilteredVisits returns the joined visits matching the filter,
	// descending by timestamp.
	FilteredVisits(ctx context.Context, f ExportFilter) ([]VisitRecord, error)

	// ListIdentities returns one page of identities with visit counts plus
	// the total identity count. sortClause is a sanitized ORDER BY body.
	ListIdentities(ctx context.Context, limit, offset int, sortClause string) ([]IdentityRow, int64, error)

	// VisitsByIdentity returns an identity's visits, newest first.
	VisitsByIdentity(ctx context.Context, identityID string) ([]*visitentity.Visit, error)
}

// IdentityReader resolves a single identity for the history view.
type IdentityReader interface {
	FindByID(ctx context.Context, id string) (*entity.Identity, error)
}

// adminUsecase implements the admin operations.
type adminUsecase struct {
	repo       AnalyticsRepository
	identities IdentityReader

	// now is injectable for tests.
	now func() time.Time
}

// NewAdminUsecase wires an adminUsecase with its repositories.
func NewAdminUsecase(repo AnalyticsRepository, identities IdentityReader) *adminUsecase {
	return &adminUsecase{
		repo:       repo,
		identities: identities,
		now:        time.Now,
	}
}

// startOfDay returns local midnight of t's day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Sunday 00:00 at or before t.
func startOfWeek(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// startOfMonth returns the first day of t's month at 00:00.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// GetSummary computes the dashboard aggregate: time-windowed counts, the
// per-discipline breakdown and the recent activity feed.
func (u *adminUsecase) GetSummary(ctx context.Context) (*Summary, error) {
	now := u.now()

	today, err := u.repo.CountVisitsSince(ctx, startOfDay(now))
	if err != nil {
		return nil, err
	}
	week, err := u.repo.CountVisitsSince(ctx, startOfWeek(now))
	if err != nil {
		return nil, err
	}
	month, err := u.repo.CountVisitsSince(ctx, startOfMonth(now))
	if err != nil {
		return nil, err
	}

	snapshots, err := u.repo.DisciplineSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	breakdown := make([]DisciplineCount, 0, len(entity.AllDisciplines()))
	for _, d := range entity.AllDisciplines() {
		var count int64
		for _, snap := range snapshots {
			if snap.Contains(d) {
				count++
			}
		}
		breakdown = append(breakdown, DisciplineCount{Discipline: d, Count: count})
	}

	recent, err := u.repo.RecentVisits(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TodayCount:  today,
		WeekCount:   week,
		MonthCount:  month,
		TotalCount:  int64(len(snapshots)),
		Disciplines: breakdown,
		Recent:      recent,
	}, nil
}

// ListIdentities returns one page of the identity listing. Sort keys are
// whitelisted here so no request-supplied string reaches the ORDER BY.
func (u *adminUsecase) ListIdentities(ctx context.Context, p PageRequest) (*IdentityPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 25
	}

	columns := map[string]string{
		"name":        "identities.name",
		"email":       "identities.email",
		"created_at":  "identities.created_at",
		"visit_count": "visit_count",
		"last_visit":  "last_visit",
	}
	column, ok := columns[p.Sort]
	if !ok {
		column = "identities.created_at"
	}
	direction := "DESC"
	if p.Order == "asc" {
		direction = "ASC"
	}

	rows, total, err := u.repo.ListIdentities(ctx, p.PerPage, (p.Page-1)*p.PerPage, column+" "+direction)
	if err != nil {
		return nil, err
	}
	return &IdentityPage{
		Identities: rows,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
	}, nil
}

// IdentityVisits returns one identity with its full visit history,
// newest first.
func (u *adminUsecase) IdentityVisits(ctx context.Context, identityID string) (*IdentityHistory, error) {
	identity, err := u.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	visits, err := u.repo.VisitsByIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return &IdentityHistory{Identity: identity, Visits: visits}, nil
}
