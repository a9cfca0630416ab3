package dto

import (
	"time"

	visitentity "checkin_backend/internal/feature/checkin/domain/entity"
	"checkin_backend/internal/feature/identity/domain/entity"
)

// IdentityView is the public projection of an identity. The credential
// never appears here.
type IdentityView struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	PreferredName string   `json:"preferred_name,omitempty"`
	Workplace     string   `json:"workplace,omitempty"`
	Disciplines   []string `json:"disciplines"`
}

// NewIdentityView projects an entity onto its public view.
func NewIdentityView(identity *entity.Identity) *IdentityView {
	disciplines := make([]string, len(identity.Disciplines))
	for i, d := range identity.Disciplines {
		disciplines[i] = string(d)
	}
	return &IdentityView{
		ID:            identity.ID,
		Email:         identity.Email,
		Name:          identity.Name,
		PreferredName: identity.PreferredName,
		Workplace:     identity.Workplace,
		Disciplines:   disciplines,
	}
}

// LastVisitView is the pre-fill payload attached to an email lookup.
type LastVisitView struct {
	VisitedAt time.Time `json:"visited_at"`
	Reason    string    `json:"reason"`
}

// NewLastVisitView projects a visit onto the pre-fill view.
func NewLastVisitView(visit *visitentity.Visit) *LastVisitView {
	if visit == nil {
		return nil
	}
	return &LastVisitView{
		VisitedAt: visit.VisitedAt,
		Reason:    visit.Reason,
	}
}

// LookupResp is the response body of both lookup endpoints.
type LookupResp struct {
	Exists    bool           `json:"exists"`
	User      *IdentityView  `json:"user,omitempty"`
	LastVisit *LastVisitView `json:"last_visit,omitempty"`
}
