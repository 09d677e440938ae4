// Package natives unpacks platform dynamic libraries from native jars.
package natives

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/metrics"
)

// Failure categories reported in ExtractResult.Detail.
const (
	DetailMissing = "missing archive"
	DetailCorrupt = "corrupt archive"
	DetailWrite   = "write failed"
)

var suffixes = []string{".so", ".dll", ".dylib"}

// IsNativeLibrary reports whether an archive member is a dynamic library.
func IsNativeLibrary(name string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Extract writes every .so, .dll and .dylib member of archive flat into
// outDir. Members whose path starts with one of the exclude prefixes are
// skipped. Failures are returned in the result, never as an error.
func Extract(archive, outDir string, exclude ...string) domain.ExtractResult {
	res := domain.ExtractResult{Archive: archive, Status: domain.ExtractSuccess}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(res, DetailMissing, err)
		}
		return fail(res, DetailCorrupt, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(res, DetailWrite, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !IsNativeLibrary(f.Name) || excluded(f.Name, exclude) {
			continue
		}
		base := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
		target := filepath.Join(outDir, base)

		if err := writeMember(f, target); err != nil {
			var werr *writeError
			if errors.As(err, &werr) {
				return fail(res, DetailWrite, werr.err)
			}
			return fail(res, DetailCorrupt, err)
		}
		res.Extracted = append(res.Extracted, base)
		metrics.NativesExtracted.Inc()
	}

	return res
}

type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }

func writeMember(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return &writeError{err: err}
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		os.Remove(target)
		var pathErr *fs.PathError
		if errors.As(copyErr, &pathErr) {
			return &writeError{err: copyErr}
		}
		return copyErr
	}
	if closeErr != nil {
		return &writeError{err: closeErr}
	}
	return nil
}

func excluded(name string, exclude []string) bool {
	for _, prefix := range exclude {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func fail(res domain.ExtractResult, category string, err error) domain.ExtractResult {
	res.Status = domain.ExtractError
	res.Detail = fmt.Sprintf("%s: %v", category, err)
	res.Extracted = nil
	return res
}
