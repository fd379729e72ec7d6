// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/pkg/errutil"
)

// userPayload is the public projection of an identity. Password hashes
// and timestamps never leave the service.
type userPayload struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	UserType    string  `json:"user_type"`
	UserGroup   string  `json:"user_group"`
	UserProfile *string `json:"user_profile"`
}

func filterIdentity(identity *auth.Identity) userPayload {
	payload := userPayload{
		ID:        identity.ID.String(),
		Email:     identity.Email,
		UserType:  string(identity.Role),
		UserGroup: identity.Group,
	}
	if identity.ProfileID != nil {
		profile := identity.ProfileID.String()
		payload.UserProfile = &profile
	}
	return payload
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

// writeError maps a service error to an HTTP status and a generic
// client-facing body. The full error, including token decode sub-codes,
// goes to the log only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	errutil.LogError(logger, "request failed", err)

	switch {
	case errutil.Code(err) == auth.CodeInvalidCredentials:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status:  "BAD_REQUEST",
			Message: "Invalid email or password.",
		})
	case errutil.Code(err) == auth.CodeEmailTaken:
		writeJSON(w, http.StatusConflict, errorResponse{
			Status:  "CONFLICT",
			Message: "Email address is already in use.",
		})
	case errutil.Code(err) == auth.CodeMissingToken || errutil.Code(err) == auth.CodeInvalidToken:
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Status:  "UNAUTHORIZED",
			Message: "Invalid or missing authentication token.",
		})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status:  "BAD_REQUEST",
			Message: "Invalid request body.",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "INTERNAL_SERVER_ERROR",
			Message: "Internal server error.",
		})
	}
}

func isValidationError(err error) bool {
	if errors.Is(err, auth.ErrEmptyPassword) {
		return true
	}
	switch errutil.Code(err) {
	case "AUTH_INVALID_EMAIL", "AUTH_INVALID_GROUP", "AUTH_INVALID_ROLE":
		return true
	}
	return false
}
