package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User is an account row. PasswordHash is empty for accounts created through
// federated login; FederatedID is empty for password accounts that were never
// linked.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	Username           sql.NullString
	Name               string
	Country            sql.NullString
	AvatarRef          sql.NullString
	EmailVerifiedAt    sql.NullTime
	LoginMethod        string
	FederatedID        sql.NullString
	LastLoginAt        sql.NullTime
	IsProfileCompleted bool
	CreatedAt          time.Time
}

// Verified reports whether the account's email address has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt.Valid
}

// MarshalJSON renders the user for API responses, omitting the password hash
// and flattening nullable columns.
func (u *User) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":                   u.ID,
		"email":                u.Email,
		"username":             nullableString(u.Username),
		"name":                 u.Name,
		"country":              nullableString(u.Country),
		"avatar":               nullableString(u.AvatarRef),
		"email_verified_at":    nullableTime(u.EmailVerifiedAt),
		"login_method":         u.LoginMethod,
		"last_login_at":        nullableTime(u.LastLoginAt),
		"is_profile_completed": u.IsProfileCompleted,
		"created_at":           u.CreatedAt,
	}
	return json.Marshal(out)
}

func nullableString(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullableTime(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time
}
