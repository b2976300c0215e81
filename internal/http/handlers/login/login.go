// Package login serves POST /api/auth/login.
package login

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/auth"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
	"github.com/aanand-mishra/students-api/internal/validation"
)

// Response is the body of a successful login.
type Response struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	User      auth.Identity `json:"user"`
	ExpiresIn string        `json:"expiresIn"`
}

// New returns the login handler.
//
// Request body:
//
//	{ "username": "admin", "password": "admin123" }
//
// 200 with a bearer token; 400 when a field is missing; 401 on a wrong pair.
func New(gate *auth.Service, validate *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("Invalid request body", err.Error()))
			return
		}

		// An empty body falls through to validation so the client is told
		// which fields are missing.
		req, err := validate.Login(req)
		if err != nil {
			var verr *validation.Error
			if errors.As(err, &verr) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error("Internal server error", "An error occurred during login"))
			return
		}

		token, err := gate.IssueToken(r.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("failed login attempt",
				slog.String("username", req.Username),
				slog.String("ip", r.RemoteAddr))
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("Invalid credentials", "Username or password is incorrect"))
			return
		}
		if err != nil {
			slog.Error("login error", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error("Internal server error", "An error occurred during login"))
			return
		}

		slog.Info("successful login",
			slog.String("username", token.Identity.Username),
			slog.String("ip", r.RemoteAddr))

		response.WriteJSON(w, http.StatusOK, Response{
			Success:   true,
			Message:   "Login successful",
			Token:     token.Value,
			User:      token.Identity,
			ExpiresIn: token.ExpiresIn,
		})
	}
}
