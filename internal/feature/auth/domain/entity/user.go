// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account that signs in with email and password.
type User struct {
	// ID is the unique identifier assigned by the store on insert.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is the login identifier. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// PasswordDigest is the bcrypt digest derived from Password.
	// It is never written directly by callers and never serialized.
	PasswordDigest string `gorm:"column:password_digest;size:255;not null" json:"-"`

	// Password and PasswordConfirmation are write-only and are never persisted.
	Password             string  `gorm:"-" json:"-"`
	PasswordConfirmation *string `gorm:"-" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}

// HasDigest reports whether a password has ever been set for the user.
// A user without a digest cannot authenticate.
func (u *User) HasDigest() bool {
	return u != nil && u.PasswordDigest != ""
}

// ClearPassword drops the transient plaintext attributes.
func (u *User) ClearPassword() {
	u.Password = ""
	u.PasswordConfirmation = nil
}
