// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserGroup string `json:"user_group"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status string       `json:"status"`
	Token  string       `json:"token"`
	Data   userEnvelope `json:"data"`
}

type userResponse struct {
	Status string       `json:"status"`
	Data   userEnvelope `json:"data"`
}

type userEnvelope struct {
	User userPayload `json:"user"`
}

// tokenCookie builds the session cookie. A negative maxAge clears it.
func (s *Server) tokenCookie(token string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	return cookie
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status:  "BAD_REQUEST",
			Message: "Invalid request body.",
		})
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, identity, err := s.service.Register(r.Context(), req.Email, req.Password, req.UserGroup)
	if err != nil {
		s.recordRegistration(err)
		writeError(w, s.logger, err)
		return
	}
	s.recordRegistration(nil)

	http.SetCookie(w, s.tokenCookie(token, s.cookieMaxAge))
	writeJSON(w, http.StatusCreated, sessionResponse{
		Status: "SUCCESS",
		Token:  token,
		Data:   userEnvelope{User: filterIdentity(identity)},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, identity, err := s.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.recordLogin(err)
		writeError(w, s.logger, err)
		return
	}
	s.recordLogin(nil)

	http.SetCookie(w, s.tokenCookie(token, s.cookieMaxAge))
	writeJSON(w, http.StatusOK, sessionResponse{
		Status: "SUCCESS",
		Token:  token,
		Data:   userEnvelope{User: filterIdentity(identity)},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		// Route wiring error: the gate did not run.
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "INTERNAL_SERVER_ERROR",
			Message: "Internal server error.",
		})
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Status: "success",
		Data:   userEnvelope{User: filterIdentity(identity)},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.tokenCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	database := s.dbReady == nil || s.dbReady()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   http.StatusOK,
		"message":  "Welcome to Authgate",
		"database": database,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"status":  http.StatusNotFound,
		"message": "Route not found.",
	})
}
