// Package launch assembles the inputs of a game process: the merged version
// descriptor, the classpath and the command line. It never starts the process.
package launch

import (
	"fmt"

	"github.com/veranemoloko/mc-fetch/internal/artifact"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/storage"
)

const maxInheritDepth = 8

// Merge applies child on top of parent. Scalar fields set on the child win,
// libraries keep the parent's order and child entries replace parent entries
// with the same group and artifact. The result has no inheritsFrom.
func Merge(child, parent *domain.VersionDescriptor) *domain.VersionDescriptor {
	out := *parent
	out.InheritsFrom = ""
	out.ID = child.ID

	if child.Type != "" {
		out.Type = child.Type
	}
	if child.MainClass != "" {
		out.MainClass = child.MainClass
	}
	if child.Assets != "" {
		out.Assets = child.Assets
	}
	if child.AssetIndex != nil {
		out.AssetIndex = child.AssetIndex
	}
	if child.Logging != nil {
		out.Logging = child.Logging
	}
	if len(child.Arguments) > 0 {
		out.Arguments = child.Arguments
	}
	if child.MinecraftArguments != "" {
		out.MinecraftArguments = child.MinecraftArguments
	}
	if child.JavaVersion != nil {
		out.JavaVersion = child.JavaVersion
	}
	if child.ReleaseTime != "" {
		out.ReleaseTime = child.ReleaseTime
	}
	if child.Time != "" {
		out.Time = child.Time
	}

	if len(parent.Downloads) > 0 || len(child.Downloads) > 0 {
		out.Downloads = make(map[string]domain.DownloadInfo, len(parent.Downloads)+len(child.Downloads))
		for k, v := range parent.Downloads {
			out.Downloads[k] = v
		}
		for k, v := range child.Downloads {
			out.Downloads[k] = v
		}
	}

	out.Libraries = mergeLibraries(parent.Libraries, child.Libraries)
	return &out
}

func mergeLibraries(parent, child []domain.Library) []domain.Library {
	childByKey := make(map[string]int, len(child))
	for i, lib := range child {
		childByKey[libraryKey(lib)] = i
	}

	used := make(map[int]bool, len(child))
	out := make([]domain.Library, 0, len(parent)+len(child))
	for _, lib := range parent {
		if i, ok := childByKey[libraryKey(lib)]; ok {
			if !used[i] {
				out = append(out, child[i])
				used[i] = true
			}
			continue
		}
		out = append(out, lib)
	}
	for i, lib := range child {
		if !used[i] {
			out = append(out, lib)
		}
	}
	return out
}

func libraryKey(lib domain.Library) string {
	c, err := artifact.ParseCoordinate(lib.Name)
	if err != nil {
		return lib.Name
	}
	return c.Key()
}

// Resolved is a fully merged descriptor and the version whose jar it runs.
type Resolved struct {
	Descriptor *domain.VersionDescriptor
	Name       string
	JarName    string
}

// Resolve loads versions/<name>/<name>.json and follows its inheritsFrom
// chain through the install root.
func Resolve(fileStorage *storage.FileStorage, name string) (*Resolved, error) {
	var desc domain.VersionDescriptor
	if err := fileStorage.ReadJSON(fileStorage.VersionJSON(name), &desc); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	merged := &desc
	jar := name
	seen := map[string]bool{name: true}

	for depth := 0; merged.InheritsFrom != ""; depth++ {
		parentID := merged.InheritsFrom
		if depth >= maxInheritDepth || seen[parentID] {
			return nil, fmt.Errorf("inheritance chain of %s is cyclic or too deep at %s", name, parentID)
		}
		seen[parentID] = true

		var parent domain.VersionDescriptor
		if err := fileStorage.ReadJSON(fileStorage.VersionJSON(parentID), &parent); err != nil {
			return nil, fmt.Errorf("load parent %s: %w", parentID, err)
		}
		inherits := parent.InheritsFrom
		merged = Merge(merged, &parent)
		merged.InheritsFrom = inherits
		jar = parentID
	}

	return &Resolved{Descriptor: merged, Name: name, JarName: jar}, nil
}
