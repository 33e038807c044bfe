package domain

import (
	"fmt"
	"time"
)

// Role enumerates the positions a user can hold, ordered by rank.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAuthor  Role = "author"
	RoleAdmin   Role = "admin"
)

var roleRanks = map[Role]int{
	RoleStudent: 1,
	RoleTutor:   2,
	RoleAuthor:  3,
	RoleAdmin:   4,
}

// ParseRole converts form input into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := roleRanks[role]; !ok {
		return "", fmt.Errorf("%w: role %q", ErrUnknownEnum, s)
	}
	return role, nil
}

func (r Role) String() string { return string(r) }

// Rank places the role in the student < tutor < author < admin order.
func (r Role) Rank() int { return roleRanks[r] }

// HasRank reports whether the role is at least as privileged as min.
// Every authorization guard in the service layer is built on this predicate.
func (r Role) HasRank(min Role) bool { return roleRanks[r] >= roleRanks[min] }

// User is an account in the system. Users are invited by an administrator
// and stay inactive until they activate the account with their one-time code.
// Accounts are never hard-deleted; disabling keeps historical authorship intact.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	Active         bool
	ActivationCode string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
