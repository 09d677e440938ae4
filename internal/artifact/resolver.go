// Package artifact walks version descriptors and asset indexes and turns
// them into fetch work lists.
package artifact

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
	"github.com/veranemoloko/mc-fetch/internal/storage"
)

// NativeArchive is a downloaded jar whose dynamic libraries must be extracted.
type NativeArchive struct {
	Library string
	URL     string
	Path    string
	Exclude []string
}

// LibraryPlan is the work list for libraries, natives, the client jar and the logging config.
type LibraryPlan struct {
	Batch    *domain.Batch
	Natives  []NativeArchive
	Excluded []string
}

// Resolver builds work lists for one install root and platform.
type Resolver struct {
	fileStorage *storage.FileStorage
	rewriter    *Rewriter
	platform    Platform
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(fileStorage *storage.FileStorage, rewriter *Rewriter, platform Platform, logger *slog.Logger) *Resolver {
	return &Resolver{
		fileStorage: fileStorage,
		rewriter:    rewriter,
		platform:    platform,
		logger:      logger,
	}
}

// Platform returns the platform rules are evaluated against.
func (r *Resolver) Platform() Platform {
	return r.platform
}

// Rewriter returns the mirror rewriter.
func (r *Resolver) Rewriter() *Rewriter {
	return r.rewriter
}

// VersionItem is the work item for versions/<name>/<name>.json.
func (r *Resolver) VersionItem(v domain.VersionSummary, name string) domain.WorkItem {
	return domain.WorkItem{
		URL:    r.rewriter.Rewrite(v.URL),
		Dest:   r.fileStorage.VersionJSON(name),
		SHA1:   v.SHA1,
		Verify: v.SHA1 != "",
	}
}

// Libraries walks the descriptor's library list. It fails before producing
// any work when the descriptor is structurally unusable.
func (r *Resolver) Libraries(desc *domain.VersionDescriptor, name string) (*LibraryPlan, error) {
	if desc == nil || desc.Libraries == nil {
		return nil, fmt.Errorf("%w: libraries", errpkg.ErrMissingField)
	}

	plan := &LibraryPlan{Batch: domain.NewBatch()}
	archMatched := r.archNatives(desc.Libraries)

	for i, lib := range desc.Libraries {
		if !Allowed(lib.Rules, r.platform) {
			plan.Excluded = append(plan.Excluded, lib.Name)
			r.logger.Debug("library excluded by rules", "library", lib.Name, "os", r.platform.OS)
			continue
		}
		if c, err := ParseCoordinate(lib.Name); err == nil && !r.wantsNative(c, archMatched) {
			plan.Excluded = append(plan.Excluded, lib.Name)
			r.logger.Debug("native excluded for architecture", "library", lib.Name, "arch", r.platform.Arch)
			continue
		}

		art, err := r.artifactFor(lib)
		if err != nil {
			return nil, fmt.Errorf("library %d (%s): %w", i, lib.Name, err)
		}
		if art != nil {
			item, err := r.libraryItem(*art)
			if err != nil {
				return nil, fmt.Errorf("library %d (%s): %w", i, lib.Name, err)
			}
			if plan.Batch.Add(item) {
				if c, err := ParseCoordinate(lib.Name); err == nil && c.IsNative() {
					plan.Natives = append(plan.Natives, r.native(lib, item))
				}
			}
		}

		classifier, ok := lib.Natives[r.platform.OS]
		if !ok {
			continue
		}
		classifier = strings.ReplaceAll(classifier, "${arch}", r.platform.Bits())
		if lib.Downloads == nil {
			r.logger.Warn("native classifier without downloads", "library", lib.Name, "classifier", classifier)
			continue
		}
		nat, ok := lib.Downloads.Classifiers[classifier]
		if !ok {
			r.logger.Warn("native classifier not found", "library", lib.Name, "classifier", classifier)
			continue
		}
		item, err := r.libraryItem(nat)
		if err != nil {
			return nil, fmt.Errorf("library %d (%s) natives: %w", i, lib.Name, err)
		}
		if plan.Batch.Add(item) {
			plan.Natives = append(plan.Natives, r.native(lib, item))
		}
	}

	if client, ok := desc.Downloads["client"]; ok && client.URL != "" {
		plan.Batch.Add(domain.WorkItem{
			URL:    r.rewriter.Rewrite(client.URL),
			Dest:   r.fileStorage.VersionJar(name),
			Size:   client.Size,
			SHA1:   client.SHA1,
			Verify: true,
		})
	}

	if desc.Logging != nil && desc.Logging.Client != nil && desc.Logging.Client.File.URL != "" {
		f := desc.Logging.Client.File
		if _, err := storage.CleanRel(f.ID); err != nil {
			return nil, fmt.Errorf("logging config: %w", err)
		}
		plan.Batch.Add(domain.WorkItem{
			URL:    r.rewriter.Rewrite(f.URL),
			Dest:   r.fileStorage.LogConfigPath(f.ID),
			Size:   f.Size,
			SHA1:   f.SHA1,
			Verify: true,
		})
	}

	r.logger.Info("library plan built",
		"version", desc.ID,
		"items", plan.Batch.Len(),
		"natives", len(plan.Natives),
		"excluded", len(plan.Excluded),
	)
	return plan, nil
}

// archNatives returns the group:artifact of every allowed natives jar built
// for the platform's architecture.
func (r *Resolver) archNatives(libs []domain.Library) map[string]bool {
	matched := make(map[string]bool)
	for _, lib := range libs {
		c, err := ParseCoordinate(lib.Name)
		if err != nil || c.NativeArch() == "" || c.NativeArch() != r.platform.Arch {
			continue
		}
		if Allowed(lib.Rules, r.platform) {
			matched[c.Group+":"+c.Artifact] = true
		}
	}
	return matched
}

// wantsNative keeps a natives jar only when it targets the platform's
// architecture. A bare natives-<os> jar is kept unless an arch-specific jar of
// the same artifact matched.
func (r *Resolver) wantsNative(c Coordinate, archMatched map[string]bool) bool {
	if !c.IsNative() {
		return true
	}
	if arch := c.NativeArch(); arch != "" {
		return arch == r.platform.Arch
	}
	return !archMatched[c.Group+":"+c.Artifact]
}

// artifactFor returns the main artifact of a library, deriving it from the
// maven coordinate when the entry has no downloads block. It returns nil when
// the library has no main artifact.
func (r *Resolver) artifactFor(lib domain.Library) (*domain.Artifact, error) {
	if lib.Downloads != nil {
		if lib.Downloads.Artifact == nil || lib.Downloads.Artifact.URL == "" {
			return nil, nil
		}
		return lib.Downloads.Artifact, nil
	}
	if len(lib.Natives) > 0 && lib.URL == "" {
		return nil, nil
	}

	c, err := ParseCoordinate(lib.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errpkg.ErrMissingField, err)
	}
	base := lib.URL
	if base == "" {
		base = CanonicalLibraries
	}
	return &domain.Artifact{
		Path: c.Path(),
		URL:  ensureSlash(base) + c.Path(),
		SHA1: lib.SHA1,
		Size: lib.Size,
	}, nil
}

func (r *Resolver) libraryItem(a domain.Artifact) (domain.WorkItem, error) {
	rel := a.Path
	if rel == "" {
		rel = pathFromURL(a.URL)
	}
	rel, err := storage.CleanRel(rel)
	if err != nil {
		return domain.WorkItem{}, err
	}
	return domain.WorkItem{
		URL:    r.rewriter.Rewrite(a.URL),
		Dest:   r.fileStorage.LibraryPath(rel),
		Size:   a.Size,
		SHA1:   a.SHA1,
		Verify: true,
	}, nil
}

func (r *Resolver) native(lib domain.Library, item domain.WorkItem) NativeArchive {
	n := NativeArchive{
		Library: lib.Name,
		URL:     item.URL,
		Path:    item.Dest,
	}
	if lib.Extract != nil {
		n.Exclude = lib.Extract.Exclude
	}
	return n
}

// pathFromURL keeps everything after the host of a maven URL.
func pathFromURL(u string) string {
	rest := u
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[i+1:]
	}
	return ""
}
