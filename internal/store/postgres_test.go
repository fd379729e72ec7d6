// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/store"
	"github.com/authgate/authgate/pkg/errutil"
)

func TestConnect_InvalidDSN(t *testing.T) {
	_, err := store.Connect(context.Background(), "not a connection string")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORE_CONNECT_FAILED")
}

func TestConnect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing is listening on this port; the cancelled context stops the
	// ping retry loop immediately instead of exhausting the backoff.
	_, err := store.Connect(ctx, "postgres://localhost:1/authgate_test")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORE_CONNECT_FAILED")
}
