package auth

import (
	"context"
	"crypto/subtle"
)

// StaticCredentials is a single configured username/password pair that
// authenticates as RoleAdmin.
type StaticCredentials struct {
	Username string
	Password string
}

func (c StaticCredentials) Authenticate(_ context.Context, username, password string) (Identity, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	if !userOK || !passOK || c.Username == "" {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Username: c.Username, Role: RoleAdmin}, nil
}
