// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package auth provides the authentication core for Authgate: credential
// hashing, stateless session tokens, and the service that orchestrates
// login and registration.
//
// # Domain Types
//
// Identity is the registered account record. Create it with NewIdentity,
// which validates the email, role, and group; direct struct initialization
// bypasses validation and may create invalid state. Repository
// implementations receive pre-validated values from the constructor.
//
// # Services
//
// Service coordinates the domain operations:
//   - Login - credential verification and token issuance
//   - Register - uniqueness check, hashing, persistence, token issuance
//
// Session tokens are signed JWTs carrying only {sub, iat, exp}. Validity is
// determined entirely by signature and expiry; there is no server-side
// session store and no revocation list.
package auth
