package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
	"github.com/aanand-mishra/students-api/internal/storage/storagetest"
	"github.com/aanand-mishra/students-api/internal/types"
)

func newTestStore(t *testing.T, path string) *sqlite.SQLite {
	t.Helper()

	st, err := sqlite.New(&config.Config{
		Storage: config.Storage{Driver: config.DriverSQLite, Path: path},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLite_Conformance(t *testing.T) {
	storagetest.Run(t, storagetest.Suite{
		New: func(t *testing.T) storage.Storage {
			return newTestStore(t, filepath.Join(t.TempDir(), "students.db"))
		},
		MissingID: "5b0d3f7e-3c9a-4a57-9d8e-7f1b2c3d4e5f",
	})
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "students.db")
	ctx := context.Background()

	first, err := sqlite.New(&config.Config{Storage: config.Storage{Path: path}})
	require.NoError(t, err)

	created, err := first.CreateStudent(ctx, types.StudentInput{
		Name:   "Henry Taylor",
		Email:  "henry.taylor@example.com",
		Course: "Mobile Development",
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newTestStore(t, path)
	got, err := second.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Henry Taylor", got.Name)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.NoError(t, second.Ping(ctx))
}
