// Package verify computes SHA-1 digests of local files and checks them
// against expected sizes and digests published by the manifest ecosystem.
package verify

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const chunkSize = 4096

// FileSHA1 returns the lowercase hex SHA-1 of the file at path.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha1.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether the file at path has the expected size and digest.
// A zero size or an empty digest is not checked.
func Verify(path string, size int64, sha1sum string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	if size > 0 && info.Size() != size {
		return false, nil
	}
	if sha1sum == "" {
		return true, nil
	}
	got, err := FileSHA1(path)
	if err != nil {
		return false, err
	}
	return Equal(got, sha1sum), nil
}

// Equal compares two hex digests case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
