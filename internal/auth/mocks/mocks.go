// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/authgate/authgate/internal/auth"
)

// MockIdentityRepository is a mock auth.IdentityRepository.
type MockIdentityRepository struct {
	mock.Mock
}

// NewMockIdentityRepository creates a MockIdentityRepository whose
// expectations are asserted on test cleanup.
func NewMockIdentityRepository(t *testing.T) *MockIdentityRepository {
	t.Helper()
	m := &MockIdentityRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements auth.IdentityRepository.
func (m *MockIdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

// GetByID implements auth.IdentityRepository.
func (m *MockIdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	args := m.Called(ctx, id)
	var identity *auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*auth.Identity)
	}
	return identity, args.Error(1)
}

// GetByEmail implements auth.IdentityRepository.
func (m *MockIdentityRepository) GetByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	args := m.Called(ctx, email)
	var identity *auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(*auth.Identity)
	}
	return identity, args.Error(1)
}

// ExistsByEmail implements auth.IdentityRepository.
func (m *MockIdentityRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockPasswordHasher is a mock auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are
// asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(password, encodedHash string) bool {
	args := m.Called(password, encodedHash)
	return args.Bool(0)
}

// Verify interfaces are satisfied.
var (
	_ auth.IdentityRepository = (*MockIdentityRepository)(nil)
	_ auth.PasswordHasher     = (*MockPasswordHasher)(nil)
)
