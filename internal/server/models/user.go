package models

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "treasurer"
	RoleResident  Role = "resident"
)

// User is an account from the static user directory.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// CanWrite reports whether the actor may mutate ledger records.
func (a Actor) CanWrite() bool {
	return a.Role == RoleAdmin || a.Role == RoleTreasurer
}
