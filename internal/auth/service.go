// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Service provides login and registration on top of an identity store, a
// password hasher, and a token codec.
type Service struct {
	identities IdentityRepository
	hasher     PasswordHasher
	tokens     *TokenCodec
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(identities IdentityRepository, hasher PasswordHasher, tokens *TokenCodec) (*Service, error) {
	return NewServiceWithLogger(identities, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(identities IdentityRepository, hasher PasswordHasher, tokens *TokenCodec, logger *slog.Logger) (*Service, error) {
	if identities == nil {
		return nil, oops.Errorf("identity repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// dummyPasswordHash is verified against when no identity exists for the
// email, so lookup misses and password mismatches take comparable time.
// This is NOT a real credential - it is a fake hash that never matches.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password produce the same AUTH_INVALID_CREDENTIALS error, so
// the endpoint cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	email = NormalizeEmail(email)

	identity, lookupErr := s.identities.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = identity.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Fall through to the dummy verification below.
	default:
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "get identity by email").
			Wrap(lookupErr)
	}

	// Always verify, even against the dummy hash, to keep response time
	// flat across the two failure causes.
	valid := s.hasher.Verify(password, targetHash)

	if !exists || !valid {
		s.logger.Warn("login rejected", "email", email, "identity_exists", exists)
		return "", nil, oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	}

	token, err := s.tokens.Issue(identity.ID, s.now())
	if err != nil {
		return "", nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}

	s.logger.Info("login succeeded", "identity_id", identity.ID.String())
	return token, identity, nil
}

// Register creates a new identity and issues a session token. The
// existence pre-check yields a friendly AUTH_EMAIL_TAKEN; the database
// unique index is the actual guarantee, and an insert-time duplicate maps
// to the same code.
func (s *Service) Register(ctx context.Context, email, password, group string) (string, *Identity, error) {
	email = NormalizeEmail(email)

	taken, err := s.identities.ExistsByEmail(ctx, email)
	if err != nil {
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "check email existence").
			Wrap(err)
	}
	if taken {
		return "", nil, oops.Code(CodeEmailTaken).Errorf("email address is already in use")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	identity, err := NewIdentity(email, hash, RoleStandard, group)
	if err != nil {
		return "", nil, err
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		// Lost the race between the existence check and the insert.
		if errors.Is(err, ErrDuplicateEmail) {
			return "", nil, oops.Code(CodeEmailTaken).Errorf("email address is already in use")
		}
		return "", nil, oops.Code(CodeStoreUnavailable).
			With("operation", "insert identity").
			Wrap(err)
	}

	token, err := s.tokens.Issue(identity.ID, s.now())
	if err != nil {
		return "", nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}

	s.logger.Info("identity registered", "identity_id", identity.ID.String(), "group", identity.Group)
	return token, identity, nil
}
