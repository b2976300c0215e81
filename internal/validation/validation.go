// Package validation turns raw request input into normalized values or a
// list of field-level errors. Nothing here touches the store.
//
// Struct rules live in validate:"..." tags on the types in
// internal/types and are checked by go-playground/validator. This package
// adds the custom "personname" tag, reports fields by their JSON names,
// and maps each failure to a message the SPA can show next to the field.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/types"
)

var personName = regexp.MustCompile(`^[a-zA-Z\s]+$`)

const maxCourseFilter = 100

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is returned whenever input is rejected. It always carries at
// least one FieldError.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Validator checks request input. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	validID  func(string) bool
}

// New builds a Validator. validID is the identifier predicate of the
// active store (see storage.Storage.ValidID).
func New(validID func(string) bool) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report "email" rather than "Email" in field errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// RegisterValidation only fails for empty or reserved tag names.
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personName.MatchString(fl.Field().String())
	})

	return &Validator{validate: v, validID: validID}
}

// Student normalizes and validates a create request.
func (v *Validator) Student(in types.StudentInput) (types.StudentInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Course = strings.TrimSpace(in.Course)

	if err := v.check(in); err != nil {
		return types.StudentInput{}, err
	}
	return in, nil
}

// StudentPatch normalizes and validates an update request. Absent fields
// are not checked.
func (v *Validator) StudentPatch(in types.StudentPatch) (types.StudentPatch, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if in.Course != nil {
		course := strings.TrimSpace(*in.Course)
		in.Course = &course
	}

	if err := v.check(in); err != nil {
		return types.StudentPatch{}, err
	}
	return in, nil
}

// Login trims the username and requires both credentials.
func (v *Validator) Login(in types.LoginRequest) (types.LoginRequest, error) {
	in.Username = strings.TrimSpace(in.Username)

	if err := v.check(in); err != nil {
		return types.LoginRequest{}, err
	}
	return in, nil
}

// ID rejects identifiers the store could never have issued.
func (v *Validator) ID(id string) error {
	if v.validID == nil || !v.validID(id) {
		return &Error{Fields: []FieldError{{
			Field:   "id",
			Message: "Invalid student ID format",
			Value:   id,
		}}}
	}
	return nil
}

// Query parses the list endpoint's query string. Missing or empty values
// fall back to defaults; present values out of range are rejected rather
// than clamped.
func (v *Validator) Query(q url.Values) (types.StudentFilter, pagination.Params, error) {
	var (
		fields []FieldError
		params = pagination.Defaults()
		filter types.StudentFilter
	)

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fields = append(fields, FieldError{Field: "page", Message: "Page must be a positive integer", Value: raw})
		} else {
			params.Page = page
		}
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > pagination.MaxLimit {
			fields = append(fields, FieldError{
				Field:   "limit",
				Message: fmt.Sprintf("Limit must be between 1 and %d", pagination.MaxLimit),
				Value:   raw,
			})
		} else {
			params.Limit = limit
		}
	}

	if course := strings.TrimSpace(q.Get("course")); course != "" {
		if err := v.validate.Var(course, fmt.Sprintf("max=%d", maxCourseFilter)); err != nil {
			fields = append(fields, FieldError{
				Field:   "course",
				Message: fmt.Sprintf("Course filter must be between 1 and %d characters", maxCourseFilter),
				Value:   course,
			})
		} else {
			filter.Course = course
		}
	}

	if len(fields) == 0 && !params.InRange() {
		fields = append(fields, FieldError{
			Field:   "page",
			Message: fmt.Sprintf("Page must be at most %d for limit %d", pagination.MaxOffset/params.Limit+1, params.Limit),
			Value:   strconv.Itoa(params.Page),
		})
	}

	if len(fields) > 0 {
		return types.StudentFilter{}, pagination.Params{}, &Error{Fields: fields}
	}
	return filter, params, nil
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	fields := make([]FieldError, 0, len(validateErrs))
	seen := make(map[string]bool, len(validateErrs))
	for _, fe := range validateErrs {
		// one message per field is enough for a form
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true

		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "personname" {
			return "Name can only contain letters and spaces"
		}
		return "Name must be between 2 and 100 characters"
	case "email":
		return "Please provide a valid email address"
	case "course":
		return "Course must be between 2 and 100 characters"
	case "username":
		return "Username is required"
	case "password":
		return "Password is required"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is required", fe.Field())
	default:
		return fmt.Sprintf("field %s is invalid", fe.Field())
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
