// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces PHC-format hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("same password produces different hashes (fresh salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("correctpassword", hash))
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("wrongpassword", hash))
	})

	t.Run("hashes of different passwords never cross-verify", func(t *testing.T) {
		hash, err := hasher.Hash("pw-one")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("pw-two", hash))
	})

	// Malformed stored hashes must behave exactly like a mismatch, so a
	// caller cannot distinguish bad-format from wrong-password.
	t.Run("malformed stored hashes verify as false", func(t *testing.T) {
		malformed := []string{
			"",
			"not-a-valid-hash",
			"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",     // wrong algorithm
			"$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA",     // bad version
			"$argon2id$v=19$invalid$c2FsdA$aGFzaA",            // bad params
			"$argon2id$v=19$m=65536,t=1,p=4$!!!bad!!!$aGFzaA", // bad salt base64
			"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!bad!!!", // bad key base64
			"$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA",  // threads overflow
		}
		for _, hash := range malformed {
			assert.False(t, hasher.Verify("password", hash), "hash %q should not verify", hash)
		}
	})
}
