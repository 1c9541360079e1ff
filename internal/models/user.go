package models

import "time"

type User struct {
	ID                int       `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Age               int       `json:"age"`
	Description       string    `json:"description"`
	ProfileImageURL   *string   `json:"profileImageUrl"`
	ProfileVisibility bool      `json:"profileVisibility"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// SafeUser is the user projection returned to clients: everything except the
// password hash.
type SafeUser struct {
	ID                int     `json:"id"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Age               int     `json:"age"`
	Description       string  `json:"description"`
	ProfileImageURL   *string `json:"profileImageUrl"`
	ProfileVisibility bool    `json:"profileVisibility"`
}

// Safe returns the password-stripped projection of u.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Age:               u.Age,
		Description:       u.Description,
		ProfileImageURL:   u.ProfileImageURL,
		ProfileVisibility: u.ProfileVisibility,
	}
}

// PublicUser is the subset of fields anonymous callers may read for users with
// a visible profile.
type PublicUser struct {
	ID              int     `json:"id"`
	Username        string  `json:"username"`
	Age             int     `json:"age"`
	Description     string  `json:"description"`
	ProfileImageURL *string `json:"profileImageUrl"`
}
