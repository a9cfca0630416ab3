// Package dto defines data transfer objects for the admin feature's HTTP
// transport layer.
package dto

// LoginReq represents the request body for the /admin/login endpoint.
type LoginReq struct {
	Password string `json:"password" binding:"required"`
}

// TokenResp carries the issued admin token.
type TokenResp struct {
	Token string `json:"token"`
}
