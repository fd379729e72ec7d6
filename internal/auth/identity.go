// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the closed set of account tiers. Stored as text; validated at the
// store boundary so downstream code never sees a free-form string.
type Role string

// Known roles.
const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a stored role tag into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStandard, RoleAdmin:
		return Role(s), nil
	default:
		return "", oops.Code("AUTH_INVALID_ROLE").With("role", s).Errorf("unknown role %q", s)
	}
}

// emailRegex is a permissive shape check: one @, no whitespace, a dot in
// the domain. Deliverability is not this service's problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims an email address. All lookups and
// inserts go through this, which is what makes the uniqueness invariant
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that an email address is plausibly shaped.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email address is not valid")
	}
	return nil
}

// Identity represents a registered account. The core treats it as
// read-mostly: it is created on registration and mutated only by external
// collaborators.
type Identity struct {
	ID           ulid.ULID
	Email        string // always normalized
	PasswordHash string
	Role         Role
	Group        string
	ProfileID    *ulid.ULID // optional profile reference
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewIdentity creates a validated Identity with a fresh ULID. The email is
// normalized before validation.
func NewIdentity(email, passwordHash string, role Role, group string) (*Identity, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	if group == "" {
		return nil, oops.Code("AUTH_INVALID_GROUP").Errorf("group cannot be empty")
	}

	now := time.Now().UTC()
	return &Identity{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Group:        group,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IdentityRepository manages identity persistence. Implementations must
// enforce a uniqueness constraint on the normalized email; the service's
// pre-insert existence check is only an optimization for a friendlier
// error.
type IdentityRepository interface {
	// Create stores a new identity. Returns an error wrapping
	// ErrDuplicateEmail if the email is already registered.
	Create(ctx context.Context, identity *Identity) error

	// GetByID retrieves an identity by ID. Returns an error wrapping
	// ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id ulid.ULID) (*Identity, error)

	// GetByEmail retrieves an identity by normalized email. Returns an
	// error wrapping ErrNotFound if it does not exist.
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// ExistsByEmail reports whether an identity with the normalized email
	// exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
