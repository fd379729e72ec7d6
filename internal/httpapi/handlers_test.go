// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/auth/mocks"
	"github.com/authgate/authgate/internal/httpapi"
)

// stubService implements httpapi.AuthService with canned results.
type stubService struct {
	token    string
	identity *auth.Identity
	err      error

	gotEmail    string
	gotPassword string
	gotGroup    string
}

func (s *stubService) Login(_ context.Context, email, password string) (string, *auth.Identity, error) {
	s.gotEmail, s.gotPassword = email, password
	return s.token, s.identity, s.err
}

func (s *stubService) Register(_ context.Context, email, password, group string) (string, *auth.Identity, error) {
	s.gotEmail, s.gotPassword, s.gotGroup = email, password, group
	return s.token, s.identity, s.err
}

func newTestServer(t *testing.T, service httpapi.AuthService, repo auth.IdentityRepository) (*httpapi.Server, *auth.TokenCodec) {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret, time.Hour)
	require.NoError(t, err)
	gate := httpapi.NewGate(codec, repo, nil, nil)
	srv := httpapi.NewServer(
		httpapi.Config{Addr: "127.0.0.1:0", CookieMaxAge: time.Hour},
		service, gate, nil, nil, nil,
	)
	return srv, codec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == httpapi.TokenCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestHandleRegister(t *testing.T) {
	t.Run("success sets cookie and returns token and user", func(t *testing.T) {
		identity := testIdentity(t)
		service := &stubService{token: "issued-token", identity: identity}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"Ada@Example.com","password":"hunter2hunter2","user_group":"users"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Ada@Example.com", service.gotEmail)
		assert.Equal(t, "hunter2hunter2", service.gotPassword)
		assert.Equal(t, "users", service.gotGroup)

		var resp struct {
			Status string `json:"status"`
			Token  string `json:"token"`
			Data   struct {
				User struct {
					Email     string  `json:"email"`
					UserType  string  `json:"user_type"`
					UserGroup string  `json:"user_group"`
					Profile   *string `json:"user_profile"`
				} `json:"user"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "SUCCESS", resp.Status)
		assert.Equal(t, "issued-token", resp.Token)
		assert.Equal(t, identity.Email, resp.Data.User.Email)
		assert.Equal(t, "standard", resp.Data.User.UserType)
		assert.Equal(t, "users", resp.Data.User.UserGroup)
		assert.Nil(t, resp.Data.User.Profile)

		cookie := sessionCookie(t, rec)
		assert.Equal(t, "issued-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		service := &stubService{err: oops.Code(auth.CodeEmailTaken).Errorf("email address is already in use")}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"dup@example.com","password":"hunter2hunter2","user_group":"users"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email address is already in use.")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubService{}, mocks.NewMockIdentityRepository(t))

		req := httptest.NewRequest(http.MethodPost, "/authentication/register", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid request body.")
	})

	t.Run("empty password is a bad request", func(t *testing.T) {
		service := &stubService{err: oops.Code("AUTH_REGISTER_FAILED").Wrap(auth.ErrEmptyPassword)}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"ada@example.com","password":"","user_group":"users"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("success sets cookie and returns token", func(t *testing.T) {
		identity := testIdentity(t)
		service := &stubService{token: "issued-token", identity: identity}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"ada@example.com","password":"hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"SUCCESS"`)
		assert.Contains(t, rec.Body.String(), "issued-token")
		assert.Equal(t, "issued-token", sessionCookie(t, rec).Value)
	})

	t.Run("invalid credentials is a generic bad request", func(t *testing.T) {
		service := &stubService{err: oops.Code(auth.CodeInvalidCredentials).Errorf("invalid email or password")}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"ada@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password.")
	})

	t.Run("store failure is a generic server error", func(t *testing.T) {
		service := &stubService{err: oops.Code(auth.CodeStoreUnavailable).Errorf("pool exhausted")}
		srv, _ := newTestServer(t, service, mocks.NewMockIdentityRepository(t))

		body := `{"email":"ada@example.com","password":"hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/authentication/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pool exhausted")
	})
}

func TestHandleMe(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		identity := testIdentity(t)
		repo := mocks.NewMockIdentityRepository(t)
		repo.On("GetByID", mock.Anything, identity.ID).Return(identity, nil)
		srv, codec := newTestServer(t, &stubService{}, repo)

		token, err := codec.Issue(identity.ID, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/authentication/me", nil)
		req.AddCookie(&http.Cookie{Name: httpapi.TokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Status string `json:"status"`
			Data   struct {
				User struct {
					Email string `json:"email"`
				} `json:"user"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, identity.Email, resp.Data.User.Email)
	})

	t.Run("rejects without a token", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubService{}, mocks.NewMockIdentityRepository(t))

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authentication/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	t.Run("clears the session cookie", func(t *testing.T) {
		identity := testIdentity(t)
		repo := mocks.NewMockIdentityRepository(t)
		repo.On("GetByID", mock.Anything, identity.ID).Return(identity, nil)
		srv, codec := newTestServer(t, &stubService{}, repo)

		token, err := codec.Issue(identity.ID, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/authentication/logout", nil)
		req.AddCookie(&http.Cookie{Name: httpapi.TokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success"`)

		cookie := sessionCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})

	t.Run("requires a token", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubService{}, mocks.NewMockIdentityRepository(t))

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authentication/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleIndex(t *testing.T) {
	srv, _ := newTestServer(t, &stubService{}, mocks.NewMockIdentityRepository(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome to Authgate")
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	srv, _ := newTestServer(t, &stubService{}, mocks.NewMockIdentityRepository(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found.")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
