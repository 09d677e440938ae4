package launch

import (
	"strings"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/storage"
)

// Classpath lists the allowed non-native library jars of desc followed by
// the main jar versions/<jarName>/<jarName>.jar.
func Classpath(desc *domain.VersionDescriptor, fileStorage *storage.FileStorage, jarName string, platform artifact.Platform) []string {
	var out []string
	seen := make(map[string]bool)

	for _, lib := range desc.Libraries {
		if !artifact.Allowed(lib.Rules, platform) {
			continue
		}
		rel := libraryPath(lib)
		if rel == "" {
			continue
		}
		rel, err := storage.CleanRel(rel)
		if err != nil {
			continue
		}
		p := fileStorage.LibraryPath(rel)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	return append(out, fileStorage.VersionJar(jarName))
}

func libraryPath(lib domain.Library) string {
	c, err := artifact.ParseCoordinate(lib.Name)
	if err == nil && c.IsNative() {
		return ""
	}
	if lib.Downloads != nil {
		if lib.Downloads.Artifact == nil {
			return ""
		}
		return lib.Downloads.Artifact.Path
	}
	if len(lib.Natives) > 0 || err != nil {
		return ""
	}
	return c.Path()
}

// Separator returns the classpath separator of the platform.
func Separator(platform artifact.Platform) string {
	if platform.OS == "windows" {
		return ";"
	}
	return ":"
}

// JoinClasspath joins entries with the platform separator.
func JoinClasspath(entries []string, platform artifact.Platform) string {
	return strings.Join(entries, Separator(platform))
}
