// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE (CLOSURE / FACTORY):
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// Each exported function here is a factory: it receives the dependencies
// (storage, validator) once at startup and returns the handler that runs
// on every request.
//
//	router.HandleFunc("POST /api/students", student.New(storage, validate))
//
// Every route in this package sits behind the bearer-token middleware.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
	"github.com/aanand-mishra/students-api/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body:
//
//	{ "name": "Alice Johnson", "email": "alice@example.com", "course": "Computer Science" }
//
// 201 with the stored student; 400 on validation failure or duplicate email.
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input types.StudentInput
		if !decodeBody(w, r, &input) {
			return
		}

		input, err := validate.Student(input)
		if !writeValidationError(w, err) {
			return
		}

		student, err := storage.CreateStudent(r.Context(), input)
		if err != nil {
			writeStoreError(w, err, "", "Failed to create student")
			return
		}

		slog.Info("student created",
			slog.String("id", student.ID),
			slog.String("email", student.Email),
			slog.String("by", actor(r)))

		response.WriteJSON(w, http.StatusCreated, response.OK(student, "Student created successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// 200 with the student; 400 for a malformed id; 404 when absent.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !writeValidationError(w, validate.ID(id)) {
			return
		}

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, id, "Failed to fetch student")
			return
		}

		slog.Info("student retrieved", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.OK(student, ""))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?page=1&limit=10&course=sci
//
// Success response (200 OK):
//
//	{
//	  "success": true,
//	  "data": [ { "id": "...", "name": "Alice Johnson", ... } ],
//	  "pagination": { "currentPage": 1, "totalPages": 3, "totalMatches": 25,
//	                  "totalStudents": 25, "hasNext": true, "hasPrev": false }
//	}
//
// "data" is [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page, err := validate.Query(r.URL.Query())
		if !writeValidationError(w, err) {
			return
		}

		students, total, err := storage.ListStudents(r.Context(), filter, page)
		if err != nil {
			writeStoreError(w, err, "", "Failed to fetch students")
			return
		}

		slog.Info("students retrieved",
			slog.Int("count", len(students)),
			slog.Int("page", page.Page),
			slog.String("course", filter.Course))

		response.WriteJSON(w, http.StatusOK, response.Page(students, pagination.NewMeta(page, total)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Only the fields present in the body are changed.
//
//	{ "course": "Machine Learning" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !writeValidationError(w, validate.ID(id)) {
			return
		}

		var patch types.StudentPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		patch, err := validate.StudentPatch(patch)
		if !writeValidationError(w, err) {
			return
		}
		if patch.Empty() {
			slog.Debug("empty update, only updatedAt changes", slog.String("id", id))
		}

		student, err := storage.UpdateStudentByID(r.Context(), id, patch)
		if err != nil {
			writeStoreError(w, err, id, "Failed to update student")
			return
		}

		slog.Info("student updated", slog.String("id", id), slog.String("by", actor(r)))
		response.WriteJSON(w, http.StatusOK, response.OK(student, "Student updated successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Responds with the record that was removed.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !writeValidationError(w, validate.ID(id)) {
			return
		}

		student, err := storage.DeleteStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, id, "Failed to delete student")
			return
		}

		slog.Info("student deleted", slog.String("id", id), slog.String("by", actor(r)))
		response.WriteJSON(w, http.StatusOK, response.OK(student, "Student deleted successfully"))
	}
}

// actor is the authenticated username, for audit logging.
func actor(r *http.Request) string {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}

// decodeBody reads the JSON body into dst. It writes the 4xx response
// itself and reports false when the handler should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		response.WriteJSON(w, http.StatusBadRequest,
			response.Error("Invalid request body", "request body is empty"))
	case errors.As(err, &tooLarge):
		response.WriteJSON(w, http.StatusRequestEntityTooLarge,
			response.Error("Request body too large", fmt.Sprintf("limit is %d bytes", tooLarge.Limit)))
	default:
		response.WriteJSON(w, http.StatusBadRequest,
			response.Error("Invalid request body", err.Error()))
	}
	return false
}

// writeValidationError writes a 400 for a *validation.Error. It returns
// true when err is nil and the handler may continue.
func writeValidationError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
		return false
	}

	slog.Error("unexpected validation failure", slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError,
		response.Error("Internal server error", "Failed to validate request"))
	return false
}

// writeStoreError translates storage sentinels into HTTP responses.
// Anything unrecognised is logged and reported as a generic 500.
func writeStoreError(w http.ResponseWriter, err error, id, failure string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound,
			response.Error("Student not found", fmt.Sprintf("No student found with ID: %s", id)))
	case errors.Is(err, storage.ErrDuplicateEmail):
		response.WriteJSON(w, http.StatusBadRequest,
			response.Error("Duplicate email", "A student with this email already exists"))
	default:
		slog.Error(failure,
			slog.String("id", id),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.Error("Internal server error", failure))
	}
}
