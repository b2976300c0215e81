package validation_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/validation"
)

func newValidator() *validation.Validator {
	return validation.New(storage.ValidUUID)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	require.NotEmpty(t, verr.Fields)

	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func ptr(s string) *string { return &s }

func TestStudent_Normalizes(t *testing.T) {
	got, err := newValidator().Student(types.StudentInput{
		Name:   "  Alice Johnson ",
		Email:  " ALICE@X.COM ",
		Course: " CS ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.Equal(t, "CS", got.Course)
}

func TestStudent_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		in    types.StudentInput
		field string
		msg   string
	}{
		{"short name", types.StudentInput{Name: "A", Email: "a@x.com", Course: "CS"}, "name", "Name must be between 2 and 100 characters"},
		{"long name", types.StudentInput{Name: strings.Repeat("a", 101), Email: "a@x.com", Course: "CS"}, "name", "Name must be between 2 and 100 characters"},
		{"digits in name", types.StudentInput{Name: "J0hn Doe", Email: "a@x.com", Course: "CS"}, "name", "Name can only contain letters and spaces"},
		{"bad email", types.StudentInput{Name: "John Doe", Email: "not-an-email", Course: "CS"}, "email", "Please provide a valid email address"},
		{"missing email", types.StudentInput{Name: "John Doe", Course: "CS"}, "email", "Please provide a valid email address"},
		{"short course", types.StudentInput{Name: "John Doe", Email: "a@x.com", Course: " C "}, "course", "Course must be between 2 and 100 characters"},
		{"long course", types.StudentInput{Name: "John Doe", Email: "a@x.com", Course: strings.Repeat("c", 101)}, "course", "Course must be between 2 and 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newValidator().Student(tt.in)
			fields := fieldErrors(t, err)
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestStudent_ReportsEveryBadField(t *testing.T) {
	_, err := newValidator().Student(types.StudentInput{})
	fields := fieldErrors(t, err)
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "course")
}

func TestStudentPatch(t *testing.T) {
	v := newValidator()

	got, err := v.StudentPatch(types.StudentPatch{})
	require.NoError(t, err)
	assert.True(t, got.Empty())

	got, err = v.StudentPatch(types.StudentPatch{Email: ptr(" New@X.com ")})
	require.NoError(t, err)
	require.NotNil(t, got.Email)
	assert.Equal(t, "new@x.com", *got.Email)
	assert.Nil(t, got.Name)

	_, err = v.StudentPatch(types.StudentPatch{Name: ptr("X")})
	assert.Equal(t, "Name must be between 2 and 100 characters", fieldErrors(t, err)["name"])

	_, err = v.StudentPatch(types.StudentPatch{Course: ptr("")})
	assert.Equal(t, "Course must be between 2 and 100 characters", fieldErrors(t, err)["course"])
}

func TestLogin(t *testing.T) {
	v := newValidator()

	got, err := v.Login(types.LoginRequest{Username: " admin ", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = v.Login(types.LoginRequest{Username: "   "})
	fields := fieldErrors(t, err)
	assert.Equal(t, "Username is required", fields["username"])
	assert.Equal(t, "Password is required", fields["password"])
}

func TestID(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ID("5b0d3f7e-3c9a-4a57-9d8e-7f1b2c3d4e5f"))
	assert.Equal(t, "Invalid student ID format", fieldErrors(t, v.ID("123"))["id"])
	assert.Error(t, validation.New(nil).ID("5b0d3f7e-3c9a-4a57-9d8e-7f1b2c3d4e5f"))
}

func TestQuery(t *testing.T) {
	v := newValidator()

	filter, params, err := v.Query(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, pagination.Defaults(), params)
	assert.Empty(t, filter.Course)

	filter, params, err = v.Query(url.Values{"page": {"3"}, "limit": {"100"}, "course": {" Science "}})
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 3, Limit: 100}, params)
	assert.Equal(t, "Science", filter.Course)

	_, _, err = v.Query(url.Values{"page": {""}, "limit": {""}, "course": {""}})
	require.NoError(t, err)
}

func TestQuery_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		field string
	}{
		{"zero page", url.Values{"page": {"0"}}, "page"},
		{"negative page", url.Values{"page": {"-2"}}, "page"},
		{"non numeric page", url.Values{"page": {"two"}}, "page"},
		{"zero limit", url.Values{"limit": {"0"}}, "limit"},
		{"limit above max", url.Values{"limit": {"101"}}, "limit"},
		{"long course", url.Values{"course": {strings.Repeat("c", 101)}}, "course"},
		{"page offset overflows", url.Values{"page": {"100000000000000000"}, "limit": {"100"}}, "page"},
		{"page beyond int", url.Values{"page": {"99999999999999999999"}}, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newValidator().Query(tt.query)
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}
