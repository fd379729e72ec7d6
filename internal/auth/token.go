// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the session token lifetime used when none is
// configured.
const DefaultTokenTTL = 60 * time.Minute

// TokenCodec issues and decodes signed session tokens. Tokens are HS256
// JWTs carrying {sub, iat, exp}. The signing secret is fixed for the
// lifetime of the codec; rotating it invalidates all outstanding tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a TokenCodec. The secret must be non-empty and the
// TTL positive.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, oops.Code("AUTH_EMPTY_SECRET").Errorf("signing secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, oops.Code("AUTH_INVALID_TTL").With("ttl", ttl).Errorf("token TTL must be positive")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a session token for the subject with issued-at now and
// expiry now+TTL.
func (c *TokenCodec) Issue(subject ulid.ULID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Decode verifies a session token and returns its subject. Failures carry
// TOKEN_MALFORMED, TOKEN_BAD_SIGNATURE or TOKEN_EXPIRED, distinguishable
// in logs; callers collapse them before anything reaches a client.
// Signature verification happens before expiry, so a tampered expired
// token reports a bad signature.
func (c *TokenCodec) Decode(tokenString string, now time.Time) (ulid.ULID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ulid.ULID{}, oops.Code(CodeTokenBadSignature).Wrap(err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return ulid.ULID{}, oops.Code(CodeTokenExpired).Wrap(err)
		default:
			return ulid.ULID{}, oops.Code(CodeTokenMalformed).Wrap(err)
		}
	}
	if !token.Valid {
		return ulid.ULID{}, oops.Code(CodeTokenMalformed).Errorf("token failed validation")
	}

	subject, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeTokenMalformed).
			With("subject", claims.Subject).
			Wrap(err)
	}
	return subject, nil
}
