// Package users authenticates the small, fixed set of society accounts
// listed in the configuration and issues their access tokens.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// Account is one configured user. Password is a plaintext convenience for
// development and is hashed on load; production configs carry PasswordHash.
type Account struct {
	Username     string      `json:"username"`
	Role         models.Role `json:"role"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Password     string      `json:"password,omitempty"`
}

// DevAccounts are used when the configuration lists no users.
func DevAccounts() []Account {
	return []Account{
		{Username: "admin", Role: models.RoleAdmin, Password: "admin123"},
		{Username: "treasurer", Role: models.RoleTreasurer, Password: "treasurer123"},
		{Username: "resident", Role: models.RoleResident, Password: "resident123"},
	}
}

type Directory struct {
	byName map[string]models.User
	// dummy is compared against when the user is unknown, so both paths
	// cost one bcrypt comparison.
	dummy []byte
}

func NewDirectory(accounts []Account) (*Directory, error) {
	d := &Directory{byName: make(map[string]models.User, len(accounts))}

	for i, a := range accounts {
		name := strings.TrimSpace(a.Username)
		if name == "" {
			return nil, fmt.Errorf("user %d: username is required", i)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("user %s: duplicate username", name)
		}
		switch a.Role {
		case models.RoleAdmin, models.RoleTreasurer, models.RoleResident:
		default:
			return nil, fmt.Errorf("user %s: unknown role %q", name, a.Role)
		}

		hash := a.PasswordHash
		switch {
		case hash != "":
			if _, err := bcrypt.Cost([]byte(hash)); err != nil {
				return nil, fmt.Errorf("user %s: bad password hash: %w", name, err)
			}
		case a.Password != "":
			h, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("user %s: hash password: %w", name, err)
			}
			hash = string(h)
		default:
			return nil, fmt.Errorf("user %s: password or password_hash is required", name)
		}

		d.byName[name] = models.User{
			ID:           strconv.Itoa(i + 1),
			Username:     name,
			Role:         a.Role,
			PasswordHash: hash,
		}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	d.dummy = dummy

	return d, nil
}

// Authenticate checks the credentials and returns the matching user.
func (d *Directory) Authenticate(_ context.Context, username, password string) (models.User, error) {
	u, ok := d.byName[strings.TrimSpace(username)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.dummy, []byte(password))
		return models.User{}, common.ErrUnauthorized
	}

	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.User{}, common.ErrUnauthorized
		}
		return models.User{}, fmt.Errorf("compare password: %w", err)
	}
	return u, nil
}

func (d *Directory) Lookup(username string) (models.User, bool) {
	u, ok := d.byName[username]
	return u, ok
}
