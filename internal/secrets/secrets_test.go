// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AWSAccessKeyID, "  AKIDEXAMPLE  \n")
				writeFile(t, dir, AWSSecretAccessKey, "wJalrXUtnFEMI\n")
				return dir
			},
			want: Set{AWSAccessKeyID: "AKIDEXAMPLE", AWSSecretAccessKey: "wJalrXUtnFEMI"},
		},
		{
			name: "skips hidden files, directories and blank values",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, AWSSessionToken, "   \n")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				writeFile(t, dir, "other", "x")
				return dir
			},
			want: Set{"other": "x"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
			want: Set{},
		},
		{
			name: "dangling symlink is skipped",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AWSAccessKeyID, "id")
				require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, AWSSecretAccessKey)))
				return dir
			},
			want: Set{AWSAccessKeyID: "id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "x")
	_, err := Load(filepath.Join(dir, "file"), nil)
	assert.ErrorContains(t, err, "reading secrets directory")
}

func TestAWS(t *testing.T) {
	id, secret, token, ok := Set{AWSAccessKeyID: "a", AWSSecretAccessKey: "b", AWSSessionToken: "c"}.AWS()
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, []string{id, secret, token})

	_, _, _, ok = Set{AWSAccessKeyID: "a"}.AWS()
	assert.False(t, ok)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
