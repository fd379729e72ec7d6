// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package postgres provides PostgreSQL-backed repositories for the auth
// package.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// Querier is the subset of pgxpool.Pool used by the repository. Narrowed
// so tests can substitute pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentityRepository implements auth.IdentityRepository using PostgreSQL.
// The identities table carries a unique index on email, which is the real
// enforcement of the one-identity-per-email invariant.
type IdentityRepository struct {
	db Querier
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(db Querier) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create stores a new identity. A unique-constraint violation on email is
// reported as auth.ErrDuplicateEmail so the service can map it to the same
// conflict error as the pre-insert check.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	var profileID *string
	if identity.ProfileID != nil {
		s := identity.ProfileID.String()
		profileID = &s
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO identities (
			id, email, password_hash, role, user_group, profile_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		identity.ID.String(),
		identity.Email,
		identity.PasswordHash,
		string(identity.Role),
		identity.Group,
		profileID,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code(auth.CodeEmailTaken).
				With("email", identity.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "insert identity").
			With("email", identity.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, user_group, profile_id,
		       created_at, updated_at
		FROM identities
		WHERE id = $1
	`, id.String())

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_BY_ID_FAILED").
			With("operation", "get identity by id").
			With("id", id.String()).
			Wrap(err)
	}
	return identity, nil
}

// GetByEmail retrieves an identity by normalized email.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, user_group, profile_id,
		       created_at, updated_at
		FROM identities
		WHERE email = $1
	`, email)

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_BY_EMAIL_FAILED").
			With("operation", "get identity by email").
			With("email", email).
			Wrap(err)
	}
	return identity, nil
}

// ExistsByEmail reports whether an identity with the normalized email
// exists.
func (r *IdentityRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM identities WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, oops.Code("IDENTITY_EXISTS_FAILED").
			With("operation", "check email existence").
			With("email", email).
			Wrap(err)
	}
	return exists, nil
}

// scanIdentity scans a single row into an Identity. The role tag is
// validated here, at the store boundary, so nothing downstream handles a
// free-form role string. Callers handle pgx.ErrNoRows.
func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var (
		identity     auth.Identity
		idStr        string
		roleStr      string
		profileIDStr *string
	)

	err := row.Scan(
		&idStr,
		&identity.Email,
		&identity.PasswordHash,
		&roleStr,
		&identity.Group,
		&profileIDStr,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("IDENTITY_SCAN_FAILED").
			With("operation", "scan identity").
			Wrap(err)
	}

	identity.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	identity.Role, err = auth.ParseRole(roleStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ROLE").
			With("id", idStr).
			Wrap(err)
	}

	if profileIDStr != nil {
		parsed, err := ulid.Parse(*profileIDStr)
		if err != nil {
			return nil, oops.Code("IDENTITY_INVALID_PROFILE_ID").
				With("profile_id", *profileIDStr).
				Wrap(err)
		}
		identity.ProfileID = &parsed
	}

	return &identity, nil
}

// Compile-time interface check.
var _ auth.IdentityRepository = (*IdentityRepository)(nil)
