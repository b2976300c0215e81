// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool. The schema lives in migrations/ and is applied by
// goose on startup.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

const uniqueViolation = "23505"

const (
	sqlInsertStudent = `
		INSERT INTO students (id, name, email, course, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`

	sqlGetStudentByID = `
		SELECT id, name, email, course, created_at, updated_at
		FROM   students
		WHERE  id = $1`

	sqlListStudents = `
		SELECT id, name, email, course, created_at, updated_at
		FROM   students
		WHERE  $1::text = '' OR strpos(lower(course), lower($1::text)) > 0
		ORDER  BY created_at DESC, seq DESC
		LIMIT  $2 OFFSET $3`

	sqlCountStudents = `
		SELECT COUNT(*)
		FROM   students
		WHERE  $1::text = '' OR strpos(lower(course), lower($1::text)) > 0`

	sqlUpdateStudent = `
		UPDATE students
		SET    name       = COALESCE($1, name),
		       email      = COALESCE($2, email),
		       course     = COALESCE($3, course),
		       updated_at = $4
		WHERE  id = $5
		RETURNING id, name, email, course, created_at, updated_at`

	sqlDeleteStudent = `
		DELETE FROM students
		WHERE  id = $1
		RETURNING id, name, email, course, created_at, updated_at`
)

// Postgres is the pgx-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New connects to dsn, verifies the connection and applies migrations.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	migrator, err := NewMigrator(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Pool exposes the pool for tests and maintenance tasks.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

func (p *Postgres) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	// timestamptz keeps microseconds; truncate so the returned value
	// equals what a later read sees.
	now := time.Now().UTC().Truncate(time.Microsecond)
	student := types.Student{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     storage.NormalizeEmail(in.Email),
		Course:    in.Course,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := p.pool.Exec(ctx, sqlInsertStudent,
		student.ID,
		student.Name,
		student.Email,
		student.Course,
		now,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("create student: %w", mapError(err))
	}
	return student, nil
}

func (p *Postgres) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	student, err := scanStudent(p.pool.QueryRow(ctx, sqlGetStudentByID, id))
	if err != nil {
		return types.Student{}, fmt.Errorf("get student %s: %w", id, mapError(err))
	}
	return student, nil
}

func (p *Postgres) ListStudents(ctx context.Context, filter types.StudentFilter, page pagination.Params) ([]types.Student, int64, error) {
	var total int64
	if err := p.pool.QueryRow(ctx, sqlCountStudents, filter.Course).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	rows, err := p.pool.Query(ctx, sqlListStudents, filter.Course, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0, page.Limit)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate students: %w", err)
	}

	return students, total, nil
}

func (p *Postgres) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	var email *string
	if patch.Email != nil {
		normalized := storage.NormalizeEmail(*patch.Email)
		email = &normalized
	}

	row := p.pool.QueryRow(ctx, sqlUpdateStudent,
		patch.Name,
		email,
		patch.Course,
		time.Now().UTC().Truncate(time.Microsecond),
		id,
	)

	student, err := scanStudent(row)
	if err != nil {
		return types.Student{}, fmt.Errorf("update student %s: %w", id, mapError(err))
	}
	return student, nil
}

func (p *Postgres) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	student, err := scanStudent(p.pool.QueryRow(ctx, sqlDeleteStudent, id))
	if err != nil {
		return types.Student{}, fmt.Errorf("delete student %s: %w", id, mapError(err))
	}
	return student, nil
}

func (p *Postgres) ValidID(id string) bool { return storage.ValidUUID(id) }

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanStudent(row pgx.Row) (types.Student, error) {
	var student types.Student
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Course,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return types.Student{}, err
	}

	student.CreatedAt = student.CreatedAt.UTC()
	student.UpdatedAt = student.UpdatedAt.UTC()
	return student, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}
