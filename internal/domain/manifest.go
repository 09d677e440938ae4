package domain

// Manifest is the top-level index of known game versions.
type Manifest struct {
	Latest   LatestVersions   `json:"latest"`
	Versions []VersionSummary `json:"versions"`
}

// LatestVersions names the newest release and snapshot.
type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// VersionSummary is one manifest entry.
type VersionSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time,omitempty"`
	ReleaseTime string `json:"releaseTime,omitempty"`
	SHA1        string `json:"sha1,omitempty"`
}

// VersionKind is the bucket a manifest entry is classified into.
type VersionKind string

const (
	KindRelease    VersionKind = "release"
	KindSnapshot   VersionKind = "snapshot"
	KindHistorical VersionKind = "historical"
)

// ListStatus reports whether the manifest could be fetched.
type ListStatus string

const (
	ListSuccess ListStatus = "success"
	ListError   ListStatus = "error"
)

// VersionList is the manifest bucketed by release classification.
type VersionList struct {
	Status     ListStatus       `json:"status"`
	Error      string           `json:"error,omitempty"`
	Latest     LatestVersions   `json:"latest"`
	Releases   []VersionSummary `json:"releases"`
	Snapshots  []VersionSummary `json:"snapshots"`
	Historical []VersionSummary `json:"historical"`
}

// Bucket returns the entries for kind. An empty kind returns every bucket.
func (l VersionList) Bucket(kind VersionKind) []VersionSummary {
	switch kind {
	case KindRelease:
		return l.Releases
	case KindSnapshot:
		return l.Snapshots
	case KindHistorical:
		return l.Historical
	}
	all := make([]VersionSummary, 0, len(l.Releases)+len(l.Snapshots)+len(l.Historical))
	all = append(all, l.Releases...)
	all = append(all, l.Snapshots...)
	return append(all, l.Historical...)
}
