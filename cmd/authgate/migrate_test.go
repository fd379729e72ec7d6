// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/pkg/errutil"
)

func TestMigrateCommand_HasSubcommands(t *testing.T) {
	cmd := newMigrateCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"up", "down", "status", "force"} {
		assert.Contains(t, output, sub)
	}
}

func TestMigrateDatabaseURL(t *testing.T) {
	t.Run("missing env is an error", func(t *testing.T) {
		t.Setenv(config.EnvDatabaseURL, "")

		_, err := migrateDatabaseURL()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("env value is returned", func(t *testing.T) {
		t.Setenv(config.EnvDatabaseURL, "postgres://localhost/authgate")

		url, err := migrateDatabaseURL()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/authgate", url)
	})
}

func TestMigrateForce_RejectsBadVersions(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{name: "non-numeric", arg: "abc"},
		{name: "negative", arg: "-1"},
		{name: "float", arg: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvDatabaseURL, "postgres://localhost/authgate")

			cmd := newMigrateForceCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			// "--" keeps a leading dash from being parsed as a flag.
			cmd.SetArgs([]string{"--", tt.arg})

			err := cmd.Execute()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "INVALID_VERSION")
		})
	}
}
