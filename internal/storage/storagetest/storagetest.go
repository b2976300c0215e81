// Package storagetest is a conformance suite for storage.Storage
// implementations. Each backend's tests call Run with a factory that
// returns a fresh, empty store.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Suite describes the backend under test.
type Suite struct {
	// New returns an empty store. It is called once per subtest.
	New func(t *testing.T) storage.Storage

	// MissingID is well-formed for the backend but never issued.
	MissingID string
}

// Run executes every conformance check against the backend.
func Run(t *testing.T, s Suite) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, s) })
	t.Run("CreateDuplicateEmail", func(t *testing.T) { testCreateDuplicateEmail(t, s) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, s) })
	t.Run("UpdatePartial", func(t *testing.T) { testUpdatePartial(t, s) })
	t.Run("UpdateDuplicateEmail", func(t *testing.T) { testUpdateDuplicateEmail(t, s) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, s) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, s) })
	t.Run("ListOrderingAndWindow", func(t *testing.T) { testListOrderingAndWindow(t, s) })
	t.Run("ListFilter", func(t *testing.T) { testListFilter(t, s) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, s) })
	t.Run("ListFarPastTheEnd", func(t *testing.T) { testListFarPastTheEnd(t, s) })
	t.Run("ValidID", func(t *testing.T) { testValidID(t, s) })
}

func create(t *testing.T, st storage.Storage, name, email, course string) types.Student {
	t.Helper()
	got, err := st.CreateStudent(context.Background(), types.StudentInput{
		Name:   name,
		Email:  email,
		Course: course,
	})
	require.NoError(t, err)
	return got
}

func testCreateAndGet(t *testing.T, s Suite) {
	st := s.New(t)
	ctx := context.Background()

	created := create(t, st, "Alice Johnson", "ALICE@X.COM", "CS")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice@x.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	got, err := st.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice Johnson", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.Equal(t, "CS", got.Course)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", created.CreatedAt, got.CreatedAt)
}

func testCreateDuplicateEmail(t *testing.T, s Suite) {
	st := s.New(t)

	create(t, st, "Alice Johnson", "alice@x.com", "CS")

	_, err := st.CreateStudent(context.Background(), types.StudentInput{
		Name:   "Someone Else",
		Email:  "Alice@X.com",
		Course: "Biology",
	})
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func testGetMissing(t *testing.T, s Suite) {
	st := s.New(t)

	_, err := st.GetStudentByID(context.Background(), s.MissingID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdatePartial(t *testing.T, s Suite) {
	st := s.New(t)
	ctx := context.Background()

	created := create(t, st, "Bob Smith", "bob@x.com", "Data Science")

	course := "Machine Learning"
	updated, err := st.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Course: &course})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Bob Smith", updated.Name)
	assert.Equal(t, "bob@x.com", updated.Email)
	assert.Equal(t, "Machine Learning", updated.Course)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// re-saving your own email in another case is not a duplicate
	email := "BOB@x.com"
	updated, err = st.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", updated.Email)

	got, err := st.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", got.Course)
}

func testUpdateDuplicateEmail(t *testing.T, s Suite) {
	st := s.New(t)

	create(t, st, "Alice Johnson", "alice@x.com", "CS")
	bob := create(t, st, "Bob Smith", "bob@x.com", "CS")

	email := "alice@x.com"
	_, err := st.UpdateStudentByID(context.Background(), bob.ID, types.StudentPatch{Email: &email})
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)

	got, err := st.GetStudentByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", got.Email)
}

func testUpdateMissing(t *testing.T, s Suite) {
	st := s.New(t)

	name := "Nobody Here"
	_, err := st.UpdateStudentByID(context.Background(), s.MissingID, types.StudentPatch{Name: &name})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testDelete(t *testing.T, s Suite) {
	st := s.New(t)
	ctx := context.Background()

	keep := create(t, st, "Carol Davis", "carol@x.com", "Software Engineering")
	gone := create(t, st, "David Wilson", "david@x.com", "Information Technology")

	deleted, err := st.DeleteStudentByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, gone.ID, deleted.ID)
	assert.Equal(t, "David Wilson", deleted.Name)

	_, err = st.GetStudentByID(ctx, gone.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.DeleteStudentByID(ctx, gone.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.DeleteStudentByID(ctx, s.MissingID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, total, err := st.ListStudents(ctx, types.StudentFilter{}, pagination.Defaults())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, err = st.GetStudentByID(ctx, keep.ID)
	require.NoError(t, err)

	// the freed email can be reused
	create(t, st, "David Wilson", "david@x.com", "Information Technology")
}

func testListOrderingAndWindow(t *testing.T, s Suite) {
	st := s.New(t)
	ctx := context.Background()

	ids := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		created := create(t, st, "Student Number", fmt.Sprintf("student%02d@x.com", i), "General Studies")
		ids = append(ids, created.ID)
	}

	// newest first
	want := make([]string, len(ids))
	for i := range ids {
		want[i] = ids[len(ids)-1-i]
	}

	page1, total, err := st.ListStudents(ctx, types.StudentFilter{}, pagination.Params{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	require.Len(t, page1, 5)
	assert.Equal(t, want[0:5], studentIDs(page1))

	page3, total, err := st.ListStudents(ctx, types.StudentFilter{}, pagination.Params{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Equal(t, want[10:12], studentIDs(page3))

	beyond, total, err := st.ListStudents(ctx, types.StudentFilter{}, pagination.Params{Page: 4, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)
}

func testListFilter(t *testing.T, s Suite) {
	st := s.New(t)
	ctx := context.Background()

	create(t, st, "Alice Johnson", "alice@x.com", "Computer Science")
	create(t, st, "Bob Smith", "bob@x.com", "Data Science")
	create(t, st, "Eva Brown", "eva@x.com", "Cybersecurity")
	create(t, st, "Grace Lee", "grace@x.com", "C++ Programming")

	got, total, err := st.ListStudents(ctx, types.StudentFilter{Course: "sci"}, pagination.Defaults())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Data Science", got[0].Course)
	assert.Equal(t, "Computer Science", got[1].Course)

	got, total, err = st.ListStudents(ctx, types.StudentFilter{Course: "SCIENCE"}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, got, 1)

	// metacharacters are matched literally
	got, total, err = st.ListStudents(ctx, types.StudentFilter{Course: "c++"}, pagination.Defaults())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Grace Lee", got[0].Name)

	got, total, err = st.ListStudents(ctx, types.StudentFilter{Course: "Astronomy"}, pagination.Defaults())
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, got)
}

func testListEmpty(t *testing.T, s Suite) {
	st := s.New(t)

	got, total, err := st.ListStudents(context.Background(), types.StudentFilter{}, pagination.Defaults())
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testListFarPastTheEnd(t *testing.T, s Suite) {
	st := s.New(t)
	create(t, st, "Alice Johnson", "alice@x.com", "CS")
	create(t, st, "Bob Smith", "bob@x.com", "CS")
	create(t, st, "Carol Davis", "carol@x.com", "CS")

	for _, page := range []pagination.Params{
		{Page: 2, Limit: 100},
		{Page: pagination.MaxOffset/100 + 1, Limit: 100},
		{Page: 100000000000000000, Limit: 100},
	} {
		got, total, err := st.ListStudents(context.Background(), types.StudentFilter{}, page)
		require.NoError(t, err, "page %d", page.Page)
		assert.EqualValues(t, 3, total, "page %d", page.Page)
		assert.NotNil(t, got)
		assert.Empty(t, got, "page %d", page.Page)
	}
}

func testValidID(t *testing.T, s Suite) {
	st := s.New(t)

	created := create(t, st, "Frank Miller", "frank@x.com", "Machine Learning")
	assert.True(t, st.ValidID(created.ID))
	assert.True(t, st.ValidID(s.MissingID))
	assert.False(t, st.ValidID("not-an-id"))
	assert.False(t, st.ValidID(""))
}

func studentIDs(students []types.Student) []string {
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}
