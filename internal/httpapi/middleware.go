// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
)

// TokenCookieName is the session cookie checked before the bearer header.
const TokenCookieName = "token"

type contextKey struct{}

var identityContextKey contextKey

// IdentityFromContext returns the authenticated identity stored by the
// request gate, or false when the request was not gated.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*auth.Identity)
	return identity, ok
}

// TokenDecoder validates a session token and returns its subject.
type TokenDecoder interface {
	Decode(tokenString string, now time.Time) (ulid.ULID, error)
}

// Gate authenticates requests before they reach protected handlers. It
// extracts a session token, decodes it, resolves the subject against the
// identity store and stores the identity in the request context.
type Gate struct {
	tokens     TokenDecoder
	identities auth.IdentityRepository
	metrics    *observability.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewGate creates a request gate. metrics may be nil.
func NewGate(tokens TokenDecoder, identities auth.IdentityRepository, metrics *observability.Metrics, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		tokens:     tokens,
		identities: identities,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// extractToken returns the session token from the request. The cookie is
// authoritative; the Authorization header is only consulted when no
// cookie is present.
func extractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token, true
	}
	return "", false
}

// Middleware wraps next with the gate. Rejections are 401 with a generic
// body; the concrete reason (malformed, bad signature, expired, unknown
// subject) is only visible in the logs and the outcome metric.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, found := extractToken(r)
		if !found {
			g.reject(w, "missing_token",
				oops.Code(auth.CodeMissingToken).Errorf("no session token in cookie or bearer header"))
			return
		}

		subject, err := g.tokens.Decode(token, g.now())
		if err != nil {
			g.reject(w, "invalid_token",
				oops.Code(auth.CodeInvalidToken).Wrap(err))
			return
		}

		identity, err := g.identities.GetByID(r.Context(), subject)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				g.reject(w, "unknown_subject",
					oops.Code(auth.CodeInvalidToken).With("subject", subject.String()).Wrap(err))
				return
			}
			g.record("error")
			writeError(w, g.logger, oops.Code(auth.CodeStoreUnavailable).Wrap(err))
			return
		}

		g.record("admitted")
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) reject(w http.ResponseWriter, outcome string, err error) {
	g.record(outcome)
	writeError(w, g.logger, err)
}

func (g *Gate) record(outcome string) {
	if g.metrics != nil {
		g.metrics.GateDecisionsTotal.WithLabelValues(outcome).Inc()
	}
}
