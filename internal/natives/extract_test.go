package natives

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mc-fetch/internal/domain"
)

func writeJar(t *testing.T, members map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "natives.jar")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestExtract_FlattensNativeLibraries(t *testing.T) {
	jar := writeJar(t, map[string]string{
		"linux/x64/org/lwjgl/liblwjgl.so": "so",
		"windows/lwjgl.dll":               "dll",
		"macos/liblwjgl.dylib":            "dylib",
		"META-INF/MANIFEST.MF":            "manifest",
		"META-INF/libsigned.so":           "excluded",
		"org/lwjgl/Version.class":         "class",
	})
	out := filepath.Join(t.TempDir(), "1.21.7-natives")

	res := Extract(jar, out, "META-INF/")

	require.Equal(t, domain.ExtractSuccess, res.Status, res.Detail)
	assert.ElementsMatch(t, []string{"liblwjgl.so", "lwjgl.dll", "liblwjgl.dylib"}, res.Extracted)

	data, err := os.ReadFile(filepath.Join(out, "liblwjgl.so"))
	require.NoError(t, err)
	assert.Equal(t, "so", string(data))
	assert.NoFileExists(t, filepath.Join(out, "libsigned.so"))
	assert.NoFileExists(t, filepath.Join(out, "MANIFEST.MF"))
	assert.NoDirExists(t, filepath.Join(out, "linux"))
}

func TestExtract_MissingArchive(t *testing.T) {
	res := Extract(filepath.Join(t.TempDir(), "nope.jar"), t.TempDir())

	assert.Equal(t, domain.ExtractError, res.Status)
	assert.Contains(t, res.Detail, DetailMissing)
}

func TestExtract_CorruptArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.jar")
	require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0o644))

	res := Extract(p, t.TempDir())

	assert.Equal(t, domain.ExtractError, res.Status)
	assert.Contains(t, res.Detail, DetailCorrupt)
}

func TestExtract_WriteFailure(t *testing.T) {
	jar := writeJar(t, map[string]string{"lib.so": "so"})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	res := Extract(jar, filepath.Join(blocker, "natives"))

	assert.Equal(t, domain.ExtractError, res.Status)
	assert.Contains(t, res.Detail, DetailWrite)
}

func TestIsNativeLibrary(t *testing.T) {
	assert.True(t, IsNativeLibrary("a/b/libx.so"))
	assert.True(t, IsNativeLibrary("x.dll"))
	assert.True(t, IsNativeLibrary("x.dylib"))
	assert.False(t, IsNativeLibrary("x.jar"))
	assert.False(t, IsNativeLibrary("x.so.sha1"))
}
