package domain

// LoaderFamily identifies a mod-loader distribution.
type LoaderFamily string

const (
	LoaderFabric   LoaderFamily = "fabric"
	LoaderQuilt    LoaderFamily = "quilt"
	LoaderForge    LoaderFamily = "forge"
	LoaderNeoForge LoaderFamily = "neoforge"
	LoaderOptiFine LoaderFamily = "optifine"
)

// LoaderRequest asks for a loader profile. An empty LoaderVersion selects the latest.
type LoaderRequest struct {
	Family        LoaderFamily `json:"family" validate:"required,oneof=fabric quilt forge neoforge optifine"`
	GameVersion   string       `json:"game_version" validate:"required,version_id"`
	LoaderVersion string       `json:"loader_version,omitempty" validate:"omitempty,loader_version"`
	Name          string       `json:"name,omitempty" validate:"omitempty,version_id"`
}

// LoaderResult describes an installed loader profile.
type LoaderResult struct {
	Family        LoaderFamily `json:"family"`
	GameVersion   string       `json:"game_version"`
	LoaderVersion string       `json:"loader_version"`
	ID            string       `json:"id"`
	InheritsFrom  string       `json:"inherits_from,omitempty"`
	Path          string       `json:"path,omitempty"`
	Persisted     bool         `json:"persisted"`
}
