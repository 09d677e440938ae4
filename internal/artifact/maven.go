package artifact

import (
	"fmt"
	"strings"
)

// Coordinate is a parsed maven coordinate group:artifact:version[:classifier][@ext].
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses a library name.
func ParseCoordinate(name string) (Coordinate, error) {
	c := Coordinate{Extension: "jar"}
	if at := strings.LastIndex(name, "@"); at >= 0 {
		c.Extension = name[at+1:]
		name = name[:at]
	}
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
		}
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// Path returns the repository-relative path of the artifact.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	file += "." + c.Extension
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + file
}

// Key identifies the artifact independent of its version.
func (c Coordinate) Key() string {
	key := c.Group + ":" + c.Artifact
	if c.Classifier != "" {
		key += ":" + c.Classifier
	}
	return key
}

// IsNative reports whether the coordinate names a natives classifier jar.
func (c Coordinate) IsNative() bool {
	return strings.HasPrefix(c.Classifier, "natives-")
}

// NativeArch returns the architecture a natives classifier targets, such as
// arm64 for natives-macos-arm64, or "" for a bare natives-<os> jar.
func (c Coordinate) NativeArch() string {
	if !c.IsNative() {
		return ""
	}
	switch {
	case strings.HasSuffix(c.Classifier, "-arm64"), strings.HasSuffix(c.Classifier, "-aarch_64"):
		return "arm64"
	case strings.HasSuffix(c.Classifier, "-x86_64"):
		return "x86_64"
	case strings.HasSuffix(c.Classifier, "-x86"):
		return "x86"
	case strings.HasSuffix(c.Classifier, "-arm32"):
		return "arm32"
	}
	return ""
}
