package models

import (
	"strings"
	"time"
)

// Account roles. Landlords additionally need admin approval before they can
// own listings.
const (
	RoleUser     = "User"
	RoleLandlord = "Landlord"
	RoleAdmin    = "Admin"
)

// NormalizeRole maps a client-supplied role to its canonical form,
// case-insensitively. Unknown roles are rejected.
func NormalizeRole(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "USER":
		return RoleUser, true
	case "LANDLORD":
		return RoleLandlord, true
	case "ADMIN":
		return RoleAdmin, true
	}
	return "", false
}

type Account struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FullName        string    `json:"full_name"`
	ContactNumber   string    `json:"contact_number"`
	Gender          string    `json:"gender"`
	Role            string    `json:"role"`
	IsApproved      bool      `json:"is_approved"`
	ProfileImageURL *string   `json:"profile_image_url"`
	IDImageURL      *string   `json:"id_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}
