// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "errors"

// Error codes attached to oops errors produced by this package. The HTTP
// boundary maps codes to client-visible statuses; token sub-reasons stay
// in logs only.
const (
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeMissingToken       = "AUTH_MISSING_TOKEN"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeStoreUnavailable   = "AUTH_STORE_UNAVAILABLE"

	CodeTokenMalformed    = "TOKEN_MALFORMED"
	CodeTokenBadSignature = "TOKEN_BAD_SIGNATURE"
	CodeTokenExpired      = "TOKEN_EXPIRED"
)

// ErrNotFound is returned when a requested identity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert hits the unique email
// constraint. The service surfaces it as CodeEmailTaken.
var ErrDuplicateEmail = errors.New("duplicate email")
