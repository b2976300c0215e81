// Package storage defines the Storage interface, a contract that any
// database backend must satisfy to work with this application.
//
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change the storage.driver config value. Zero handler changes.
//
//   - Writing tests = use the in-memory backend, or run the shared
//     conformance suite in storagetest against a real one.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Sentinel errors returned by every backend. Backends wrap them with
// context (fmt.Errorf("...: %w", ErrNotFound)); callers match with
// errors.Is and translate to HTTP status codes at the boundary.
var (
	ErrNotFound       = errors.New("student not found")
	ErrDuplicateEmail = errors.New("a student with this email already exists")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent persists a new student and returns the stored record,
	// including its store-assigned ID and timestamps.
	// Fails with ErrDuplicateEmail when the email is already taken.
	CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error)

	// GetStudentByID fetches a single student. Fails with ErrNotFound.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// ListStudents returns one page of students matching filter, newest
	// first, together with the number of matches across all pages.
	// A page past the end returns an empty (non-nil) slice.
	ListStudents(ctx context.Context, filter types.StudentFilter, page pagination.Params) ([]types.Student, int64, error)

	// UpdateStudentByID applies the non-nil fields of patch atomically and
	// returns the updated record. Fails with ErrNotFound or
	// ErrDuplicateEmail.
	UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes a student and returns the removed record.
	// Fails with ErrNotFound.
	DeleteStudentByID(ctx context.Context, id string) (types.Student, error)

	// ValidID reports whether id has the shape of an identifier this
	// backend could have issued.
	ValidID(id string) bool

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// NormalizeEmail is applied by every backend before an email is written
// or compared, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidUUID is the id predicate for backends that issue UUIDs.
func ValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
