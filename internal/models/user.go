package models

import (
	"strings"
	"time"
)

// Role is the single classification of an actor, resolved once at authentication time.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleStaff      Role = "STAFF"
	RoleTrainer    Role = "TRAINER"
	RoleStudent    Role = "STUDENT"
)

// IsBDM reports whether the role belongs to the business-development team (staff or superuser).
func (r Role) IsBDM() bool {
	return r == RoleSuperAdmin || r == RoleStaff
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleStaff, RoleTrainer, RoleStudent:
		return true
	}
	return false
}

// ResolveRole classifies a user. Superuser wins over staff, and the trainer profile is checked
// before falling through to student.
func ResolveRole(user *User, hasTrainerProfile bool) Role {
	switch {
	case user == nil:
		return ""
	case user.IsSuperuser:
		return RoleSuperAdmin
	case user.IsStaff:
		return RoleStaff
	case hasTrainerProfile:
		return RoleTrainer
	default:
		return RoleStudent
	}
}

// User is a login credential stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool       `db:"is_superuser" json:"is_superuser"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Trainer is the profile row whose presence marks a user as a trainer.
type Trainer struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Designation string    `db:"designation" json:"designation"`
	Expertise   string    `db:"expertise" json:"expertise"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// TotalPages derives the page count for templates.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	pages := (p.TotalCount + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}
