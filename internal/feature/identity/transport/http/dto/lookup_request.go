package dto

// LookupReq represents the request body for the /lookup endpoint.
type LookupReq struct {
	Email string `json:"email" binding:"required,email"`
}

// PINLookupReq represents the request body for the /lookup-by-pin endpoint.
type PINLookupReq struct {
	PIN string `json:"pin" binding:"required"`
}
