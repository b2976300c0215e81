// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver, which makes it the default backend.
//
// Schema notes:
//   - id is a UUID string; rowid (implicit) records insertion order and
//     breaks ties when two rows share a created_at value.
//   - created_at / updated_at are Unix nanoseconds so ORDER BY sorts
//     them numerically.
//   - email carries a UNIQUE constraint; the driver reports violations
//     as sqlite3.ErrConstraintUnique which we map to
//     storage.ErrDuplicateEmail.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id         TEXT    NOT NULL PRIMARY KEY,
		name       TEXT    NOT NULL,
		email      TEXT    NOT NULL UNIQUE,
		course     TEXT    NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_students_course ON students (course);
	CREATE INDEX IF NOT EXISTS idx_students_created_at ON students (created_at);
`

const (
	sqlInsertStudent = `
		INSERT INTO students (id, name, email, course, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	sqlGetStudentByID = `
		SELECT id, name, email, course, created_at, updated_at
		FROM   students
		WHERE  id = ?
		LIMIT  1`

	// ?1 is the course filter; '' disables it.
	sqlListStudents = `
		SELECT id, name, email, course, created_at, updated_at
		FROM   students
		WHERE  ?1 = '' OR instr(lower(course), lower(?1)) > 0
		ORDER  BY created_at DESC, rowid DESC
		LIMIT  ?2 OFFSET ?3`

	sqlCountStudents = `
		SELECT COUNT(*)
		FROM   students
		WHERE  ?1 = '' OR instr(lower(course), lower(?1)) > 0`

	// NULL arguments keep the current column value.
	sqlUpdateStudent = `
		UPDATE students
		SET    name       = COALESCE(?, name),
		       email      = COALESCE(?, email),
		       course     = COALESCE(?, course),
		       updated_at = ?
		WHERE  id = ?
		RETURNING id, name, email, course, created_at, updated_at`

	sqlDeleteStudent = `
		DELETE FROM students
		WHERE  id = ?
		RETURNING id, name, email, course, created_at, updated_at`
)

// New opens the SQLite database at cfg.Storage.Path, creates the
// students table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	path := cfg.Storage.Path
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// _busy_timeout keeps concurrent writers from failing immediately
	// with "database is locked".
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE ... IF NOT EXISTS is idempotent, safe to run on every startup.
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

func (s *SQLite) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	now := time.Now().UTC()
	student := types.Student{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     storage.NormalizeEmail(in.Email),
		Course:    in.Course,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.Db.ExecContext(ctx, sqlInsertStudent,
		student.ID,
		student.Name,
		student.Email,
		student.Course,
		now.UnixNano(),
		now.UnixNano(),
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", mapError(err))
	}

	return student, nil
}

func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	student, err := scanStudent(s.Db.QueryRowContext(ctx, sqlGetStudentByID, id))
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", id, mapError(err))
	}
	return student, nil
}

func (s *SQLite) ListStudents(ctx context.Context, filter types.StudentFilter, page pagination.Params) ([]types.Student, int64, error) {
	var total int64
	if err := s.Db.QueryRowContext(ctx, sqlCountStudents, filter.Course).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListStudents: count: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, sqlListStudents, filter.Course, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0, page.Limit)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, total, nil
}

func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	var email *string
	if patch.Email != nil {
		normalized := storage.NormalizeEmail(*patch.Email)
		email = &normalized
	}

	// Argument order matches the ? order in the SQL: name, email, course,
	// updated_at, id. A nil *string is sent as NULL.
	row := s.Db.QueryRowContext(ctx, sqlUpdateStudent,
		patch.Name,
		email,
		patch.Course,
		time.Now().UTC().UnixNano(),
		id,
	)

	student, err := scanStudent(row)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %s: %w", id, mapError(err))
	}
	return student, nil
}

func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	student, err := scanStudent(s.Db.QueryRowContext(ctx, sqlDeleteStudent, id))
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID %s: %w", id, mapError(err))
	}
	return student, nil
}

func (s *SQLite) ValidID(id string) bool { return storage.ValidUUID(id) }

func (s *SQLite) Ping(ctx context.Context) error { return s.Db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.Db.Close() }

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		student            types.Student
		createdAt, updated int64
	)

	// The order of variables must match the SELECT column order.
	if err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Course,
		&createdAt,
		&updated,
	); err != nil {
		return types.Student{}, err
	}

	student.CreatedAt = time.Unix(0, createdAt).UTC()
	student.UpdatedAt = time.Unix(0, updated).UTC()
	return student, nil
}

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", storage.ErrDuplicateEmail, err)
	}
	return err
}
