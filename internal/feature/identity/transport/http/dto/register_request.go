// Package dto defines data transfer objects for the identity feature's HTTP
// transport layer.
package dto

// RegisterReq represents the request body for the /register endpoint.
// Gin's binding tags catch missing or malformed fields; the PIN format and
// the discipline enumeration are validated in the usecase so failures come
// back field-tagged.
type RegisterReq struct {
	Email         string   `json:"email" binding:"required,email"`
	Name          string   `json:"name" binding:"required"`
	PreferredName string   `json:"preferred_name"`
	Workplace     string   `json:"workplace"`
	PIN           string   `json:"pin" binding:"required"`
	Disciplines   []string `json:"disciplines" binding:"required"`
}
