package dto

// UpdateProfileReq represents the request body for the /profile/update
// endpoint. Email is immutable and therefore absent; an omitted PIN keeps
// the stored credential.
type UpdateProfileReq struct {
	IdentityID    string   `json:"identity_id" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	PreferredName string   `json:"preferred_name"`
	Workplace     string   `json:"workplace"`
	PIN           string   `json:"pin"`
	Disciplines   []string `json:"disciplines" binding:"required"`
}
