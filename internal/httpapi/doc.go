// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package httpapi exposes the authentication service over HTTP.
//
// Routes:
//   - POST /authentication/register
//   - POST /authentication/login
//   - GET  /authentication/me      (requires a session token)
//   - GET  /authentication/logout  (requires a session token)
//
// Session tokens travel in the "token" cookie or an Authorization
// bearer header; the cookie wins when both are present.
package httpapi
