package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha1("hello world")
const helloSHA1 = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSHA1(t *testing.T) {
	path := writeFile(t, "hello world")

	got, err := FileSHA1(path)
	require.NoError(t, err)
	assert.Equal(t, helloSHA1, got)
}

func TestFileSHA1_MissingFile(t *testing.T) {
	_, err := FileSHA1(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerify(t *testing.T) {
	path := writeFile(t, "hello world")

	tests := []struct {
		name string
		size int64
		sha1 string
		want bool
	}{
		{name: "size and digest match", size: 11, sha1: helloSHA1, want: true},
		{name: "uppercase digest", size: 11, sha1: "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED", want: true},
		{name: "nothing expected", want: true},
		{name: "size only", size: 11, want: true},
		{name: "wrong size", size: 12, sha1: helloSHA1, want: false},
		{name: "wrong digest", size: 11, sha1: "0000000000000000000000000000000000000000", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(path, tt.size, tt.sha1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerify_MissingFile(t *testing.T) {
	ok, err := Verify(filepath.Join(t.TempDir(), "missing"), 1, helloSHA1)
	assert.False(t, ok)
	assert.Error(t, err)
}
