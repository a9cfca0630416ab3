package dto

// LoginReq represents the request body for the /login endpoint.
type LoginReq struct {
	Email string `json:"email" binding:"required,email"`
	PIN   string `json:"pin" binding:"required"`
}
