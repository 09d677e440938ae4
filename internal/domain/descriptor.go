package domain

import "encoding/json"

// VersionDescriptor is the per-version JSON document.
type VersionDescriptor struct {
	ID                 string                  `json:"id"`
	InheritsFrom       string                  `json:"inheritsFrom,omitempty"`
	Type               string                  `json:"type,omitempty"`
	MainClass          string                  `json:"mainClass"`
	Assets             string                  `json:"assets,omitempty"`
	AssetIndex         *AssetIndexRef          `json:"assetIndex,omitempty"`
	Downloads          map[string]DownloadInfo `json:"downloads,omitempty"`
	Libraries          []Library               `json:"libraries"`
	Logging            *Logging                `json:"logging,omitempty"`
	Arguments          json.RawMessage         `json:"arguments,omitempty"`
	MinecraftArguments string                  `json:"minecraftArguments,omitempty"`
	JavaVersion        *JavaVersion            `json:"javaVersion,omitempty"`
	ReleaseTime        string                  `json:"releaseTime,omitempty"`
	Time               string                  `json:"time,omitempty"`
}

// AssetIndexRef points at the asset index document of a version.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// DownloadInfo describes a downloadable file such as the client jar.
type DownloadInfo struct {
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Library is one entry of the descriptor's library list.
//
// Vanilla entries carry Downloads. Loader profiles often only carry a maven
// coordinate in Name and a repository base in URL.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   *ExtractRules     `json:"extract,omitempty"`
	URL       string            `json:"url,omitempty"`
	SHA1      string            `json:"sha1,omitempty"`
	Size      int64             `json:"size,omitempty"`
}

// LibraryDownloads holds the main artifact and the classifier table.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a file stored under the libraries directory.
type Artifact struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// ExtractRules lists archive paths excluded from native extraction.
type ExtractRules struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Rule is one OS inclusion rule.
type Rule struct {
	Action   RuleAction      `json:"action"`
	OS       *OSMatcher      `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// RuleAction is allow or disallow.
type RuleAction string

const (
	RuleAllow    RuleAction = "allow"
	RuleDisallow RuleAction = "disallow"
)

// OSMatcher restricts a rule to an OS name and, optionally, an architecture.
type OSMatcher struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Logging holds the client logging configuration reference.
type Logging struct {
	Client *LoggingConfig `json:"client,omitempty"`
}

// LoggingConfig describes the log4j configuration file passed to the client.
type LoggingConfig struct {
	Argument string      `json:"argument"`
	File     LoggingFile `json:"file"`
	Type     string      `json:"type"`
}

// LoggingFile is the downloadable logging configuration.
type LoggingFile struct {
	ID   string `json:"id"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// JavaVersion is the runtime requirement declared by a version.
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}
