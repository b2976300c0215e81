// Package memory is an in-process implementation of storage.Storage.
// It is used by tests and by `storage.driver: memory` for local demos;
// data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

type record struct {
	student types.Student
	seq     uint64 // insertion order, breaks createdAt ties
}

// Memory keeps students in a map guarded by a single RWMutex, which plays
// the role a database's per-document atomicity plays in the other
// backends.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*record
	byEmail map[string]string // email → id
	seq     uint64
	now     func() time.Time
}

// Option customises a Memory store.
type Option func(*Memory)

// WithClock replaces time.Now; tests use it to control timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Memory {
	m := &Memory{
		byID:    make(map[string]*record),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) CreateStudent(_ context.Context, in types.StudentInput) (types.Student, error) {
	email := storage.NormalizeEmail(in.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[email]; taken {
		return types.Student{}, fmt.Errorf("memory.CreateStudent: %w", storage.ErrDuplicateEmail)
	}

	now := m.now().UTC()
	m.seq++
	rec := &record{
		student: types.Student{
			ID:        uuid.NewString(),
			Name:      in.Name,
			Email:     email,
			Course:    in.Course,
			CreatedAt: now,
			UpdatedAt: now,
		},
		seq: m.seq,
	}

	m.byID[rec.student.ID] = rec
	m.byEmail[email] = rec.student.ID

	return rec.student, nil
}

func (m *Memory) GetStudentByID(_ context.Context, id string) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return types.Student{}, fmt.Errorf("memory.GetStudentByID %s: %w", id, storage.ErrNotFound)
	}
	return rec.student, nil
}

func (m *Memory) ListStudents(_ context.Context, filter types.StudentFilter, page pagination.Params) ([]types.Student, int64, error) {
	m.mu.RLock()
	matches := make([]*record, 0, len(m.byID))
	for _, rec := range m.byID {
		if pagination.MatchCourse(rec.student.Course, filter.Course) {
			matches = append(matches, rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.student.CreatedAt.Equal(b.student.CreatedAt) {
			return a.student.CreatedAt.After(b.student.CreatedAt)
		}
		return a.seq > b.seq
	})

	window := pagination.Window(matches, page)
	students := make([]types.Student, 0, len(window))
	for _, rec := range window {
		students = append(students, rec.student)
	}

	return students, int64(len(matches)), nil
}

func (m *Memory) UpdateStudentByID(_ context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return types.Student{}, fmt.Errorf("memory.UpdateStudentByID %s: %w", id, storage.ErrNotFound)
	}

	updated := rec.student
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Course != nil {
		updated.Course = *patch.Course
	}
	if patch.Email != nil {
		email := storage.NormalizeEmail(*patch.Email)
		if owner, taken := m.byEmail[email]; taken && owner != id {
			return types.Student{}, fmt.Errorf("memory.UpdateStudentByID %s: %w", id, storage.ErrDuplicateEmail)
		}
		delete(m.byEmail, rec.student.Email)
		m.byEmail[email] = id
		updated.Email = email
	}
	updated.UpdatedAt = m.now().UTC()

	rec.student = updated
	return updated, nil
}

func (m *Memory) DeleteStudentByID(_ context.Context, id string) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return types.Student{}, fmt.Errorf("memory.DeleteStudentByID %s: %w", id, storage.ErrNotFound)
	}

	delete(m.byID, id)
	delete(m.byEmail, rec.student.Email)
	return rec.student, nil
}

// ValidID accepts UUIDs, the only ids this store hands out.
func (m *Memory) ValidID(id string) bool {
	return storage.ValidUUID(id)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
