package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

// maxMemberSize bounds a JSON member read from an installer.
const maxMemberSize = 16 << 20

var candidateMembers = []string{
	"version.json",
	"install_profile.json",
	"data/client_profile.json",
	"data/profile.json",
	"profile.json",
}

func (r *Resolver) fromInstaller(ctx context.Context, family domain.LoaderFamily, template string, vars templateVars) (*domain.Profile, error) {
	url := vars.format(template)
	dest := r.fileStorage.InstallerPath(fmt.Sprintf("%s-%s-%s-installer.jar", family, vars.game, vars.loader))

	r.logger.Info("downloading loader installer", "family", family, "url", url)
	res := r.fetcher.Fetch(ctx, domain.WorkItem{URL: url, Dest: dest})
	if !res.OK() {
		return nil, fmt.Errorf("download installer: %s", res.Detail)
	}

	return ProfileFromInstaller(dest)
}

// ProfileFromInstaller opens an installer archive and returns the version
// profile it carries. Well-known member paths are tried first, then every
// JSON member in archive order.
func ProfileFromInstaller(path string) (*domain.Profile, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open installer: %w", err)
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	for _, name := range candidateMembers {
		f, ok := members[name]
		if !ok {
			continue
		}
		if p := decodeMember(f); p != nil {
			return p, nil
		}
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		if p := decodeMember(f); p != nil {
			return p, nil
		}
	}

	return nil, errpkg.ErrNoProfileInInstaller
}

func decodeMember(f *zip.File) *domain.Profile {
	rc, err := f.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize))
	if err != nil {
		return nil
	}
	return DecodeProfileDocument(data)
}

// DecodeProfileDocument recognizes the two document shapes found in
// installers: an install profile wrapping the version under "versionInfo",
// and a bare version descriptor with "libraries" and a main class. It
// returns nil for anything else.
func DecodeProfileDocument(data []byte) *domain.Profile {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var wrapper struct {
		VersionInfo json.RawMessage `json:"versionInfo"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil
	}
	if len(wrapper.VersionInfo) > 0 && !bytes.Equal(wrapper.VersionInfo, []byte("null")) {
		p, err := domain.ParseProfile(wrapper.VersionInfo)
		if err != nil {
			return nil
		}
		return p
	}

	p, err := domain.ParseProfile(data)
	if err != nil {
		return nil
	}
	if p.Has("libraries") && (p.Has("mainClass") || p.Has("main-class")) {
		return p
	}
	return nil
}
