package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleAdmin   Role = "Admin"
)

// ParseRole is the only place a role is compared as free-form text.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "teacher":
		return RoleTeacher, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q (expected Student, Teacher or Admin)", ErrValidation, s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Actor is the per-request session resolved by the auth middleware and passed
// explicitly to every service call.
type Actor struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email,omitempty"`
	Name   string    `json:"name,omitempty"`
	Role   Role      `json:"role"`
	Active bool      `json:"active"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsOwner(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}
