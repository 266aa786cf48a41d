// Package models holds the client-side views of API resources.
package models

import "time"

// User mirrors the account object returned by the server.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Username           *string    `json:"username"`
	Name               string     `json:"name"`
	Country            *string    `json:"country"`
	Avatar             *string    `json:"avatar"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at"`
	LoginMethod        string     `json:"login_method"`
	LastLoginAt        *time.Time `json:"last_login_at"`
	IsProfileCompleted bool       `json:"is_profile_completed"`
	CreatedAt          time.Time  `json:"created_at"`
}
