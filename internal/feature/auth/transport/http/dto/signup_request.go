// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// SignupReq represents the request body for the /signup endpoint.
// Presence and uniqueness are checked by the use case so that every failing
// field is reported together; binding only rejects malformed JSON.
type SignupReq struct {
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// ChangePasswordReq represents the request body for PUT /me/password.
type ChangePasswordReq struct {
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// ChangeEmailReq represents the request body for PUT /me/email.
type ChangeEmailReq struct {
	Email string `json:"email"`
}
