package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStorage owns the on-disk layout below an install root:
//
//	versions/<name>/<name>.json|.jar
//	versions/<name>/<name>-natives/
//	libraries/<path>
//	assets/indexes/<id>.json
//	assets/objects/<xx>/<hash>
//	assets/log_configs/<id>
//	cache/installers/<file>
type FileStorage struct {
	dir string
}

// NewFileStorage creates a new FileStorage rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Root returns the install root.
func (s *FileStorage) Root() string {
	return s.dir
}

// VersionDir returns versions/<name>.
func (s *FileStorage) VersionDir(name string) string {
	return filepath.Join(s.dir, "versions", name)
}

// VersionJSON returns versions/<name>/<name>.json.
func (s *FileStorage) VersionJSON(name string) string {
	return filepath.Join(s.VersionDir(name), name+".json")
}

// VersionJar returns versions/<name>/<name>.jar.
func (s *FileStorage) VersionJar(name string) string {
	return filepath.Join(s.VersionDir(name), name+".jar")
}

// NativesDir returns versions/<name>/<name>-natives.
func (s *FileStorage) NativesDir(name string) string {
	return filepath.Join(s.VersionDir(name), name+"-natives")
}

// LibrariesDir returns the libraries directory.
func (s *FileStorage) LibrariesDir() string {
	return filepath.Join(s.dir, "libraries")
}

// LibraryPath returns libraries/<rel> for a slash-separated descriptor path.
func (s *FileStorage) LibraryPath(rel string) string {
	return filepath.Join(s.LibrariesDir(), filepath.FromSlash(rel))
}

// AssetsDir returns the assets directory.
func (s *FileStorage) AssetsDir() string {
	return filepath.Join(s.dir, "assets")
}

// AssetIndexPath returns assets/indexes/<id>.json.
func (s *FileStorage) AssetIndexPath(id string) string {
	return filepath.Join(s.AssetsDir(), "indexes", id+".json")
}

// ObjectsDir returns assets/objects.
func (s *FileStorage) ObjectsDir() string {
	return filepath.Join(s.AssetsDir(), "objects")
}

// ObjectPath returns assets/objects/<shard> where shard is "<xx>/<hash>".
func (s *FileStorage) ObjectPath(shard string) string {
	return filepath.Join(s.ObjectsDir(), filepath.FromSlash(shard))
}

// LogConfigPath returns assets/log_configs/<id>.
func (s *FileStorage) LogConfigPath(id string) string {
	return filepath.Join(s.AssetsDir(), "log_configs", id)
}

// InstallerPath returns cache/installers/<file>.
func (s *FileStorage) InstallerPath(file string) string {
	return filepath.Join(s.dir, "cache", "installers", file)
}

// PrepareInstall creates the directories an install writes into.
func (s *FileStorage) PrepareInstall(name string) error {
	dirs := []string{
		s.VersionDir(name),
		s.NativesDir(name),
		s.LibrariesDir(),
		filepath.Dir(s.AssetIndexPath("x")),
		s.ObjectsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CreateFile creates or truncates the file at p, creating its parent directory first.
func (s *FileStorage) CreateFile(p string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	return os.Create(p)
}

// FileExists checks whether a regular file exists at p.
func (s *FileStorage) FileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Remove deletes the file at p. A missing file is not an error.
func (s *FileStorage) Remove(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteFile writes data to p, creating its parent directory first.
func (s *FileStorage) WriteFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// WriteJSON writes v as indented JSON to p.
func (s *FileStorage) WriteJSON(p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", p, err)
	}
	return s.WriteFile(p, data)
}

// ReadJSON decodes the JSON file at p into v.
func (s *FileStorage) ReadJSON(p string, v any) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}

// CleanRel validates a slash-separated relative path taken from a remote document.
// It rejects absolute paths and paths that climb out of their base directory.
func CleanRel(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	cleaned := path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q escapes its base directory", rel)
	}
	return cleaned, nil
}
