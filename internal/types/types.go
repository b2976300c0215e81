// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, validation and utils can all import types without
// depending on each other.
package types

import "time"

// Student represents a student record as persisted by a store.
//
// ID is opaque: its format belongs to the storage backend (a UUID for
// SQLite/PostgreSQL/memory, an ObjectID hex string for MongoDB).
// CreatedAt and UpdatedAt are set by the store on every write.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentInput is the body of POST /api/students.
//
// validate:"..." tags are checked by the go-playground/validator package
// (see internal/validation). "personname" is a custom tag registered
// there: letters and spaces only.
type StudentInput struct {
	Name   string `json:"name"   validate:"required,min=2,max=100,personname"`
	Email  string `json:"email"  validate:"required,email"`
	Course string `json:"course" validate:"required,min=2,max=100"`
}

// StudentPatch is the body of PUT /api/students/{id}.
// A nil field is left untouched; a present field must pass the same rule
// as on creation.
type StudentPatch struct {
	Name   *string `json:"name,omitempty"   validate:"omitnil,min=2,max=100,personname"`
	Email  *string `json:"email,omitempty"  validate:"omitnil,email"`
	Course *string `json:"course,omitempty" validate:"omitnil,min=2,max=100"`
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Course == nil
}

// StudentFilter narrows a list query. Course is a case-insensitive
// substring; empty means no filter.
type StudentFilter struct {
	Course string
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
