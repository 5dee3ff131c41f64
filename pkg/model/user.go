package model

import (
	"errors"

	"github.com/google/uuid"
)

var ErrEmailTaken = errors.New("user with this email already exists")

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Privileged reports whether the role may manage the catalog and see
// out-of-stock items.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Role     Role      `json:"role"`
}
