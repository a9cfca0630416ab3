// Package dto defines data transfer objects for the checkin feature's HTTP
// transport layer.
package dto

// CheckInReq represents the request body for the /checkin endpoint.
// The reason length bounds are enforced in the usecase after sanitizing.
type CheckInReq struct {
	IdentityID string `json:"identity_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// QuickCheckInReq represents the request body for the /checkin/quick
// endpoint: identity fields and the visit reason in one submission.
type QuickCheckInReq struct {
	Email       string   `json:"email" binding:"required,email"`
	PIN         string   `json:"pin" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Disciplines []string `json:"disciplines" binding:"required"`
	Reason      string   `json:"reason" binding:"required"`
}
