package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.3", "v1.2.3"},
		{"1.2", "v1.2.0"},
		{"v2.0.0-rc.1", "v2.0.0-rc.1 (pre-release)"},
		{"(devel)", "(devel) (development build)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, displayVersion(tt.in))
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSettingsSetAndShow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kakomon.db")

	out, err := execute(t, "settings", "set", "--db", db, "--user", "ana", "--level2=false", "--mode", "AND")
	require.NoError(t, err)
	assert.Equal(t, "level1=true level2=false level3=true mode=AND\n", out)

	out, err = execute(t, "settings", "show", "--db", db, "--user", "ana")
	require.NoError(t, err)
	assert.Equal(t, "level1=true level2=false level3=true mode=AND\n", out)
}

func TestResetRejectsUnknownScope(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kakomon.db")
	_, err := execute(t, "reset", "1", "--db", db, "--user", "ana", "--scope", "everything")
	require.Error(t, err)
}

func TestMockHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kakomon.db")
	out, err := execute(t, "mock", "history", "--db", db, "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "No mock attempts yet.")
}
