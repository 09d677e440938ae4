package domain

// InstallRequest asks for a game version to be installed.
type InstallRequest struct {
	Version string      `json:"version" validate:"required,version_id"`
	Name    string      `json:"name,omitempty" validate:"omitempty,version_id"`
	Kind    VersionKind `json:"kind,omitempty" validate:"omitempty,oneof=release snapshot historical"`
}

// InstallName is the directory name under versions/.
func (r InstallRequest) InstallName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Version
}

// InstallStatus is the overall result of an install.
type InstallStatus string

const (
	InstallSuccess InstallStatus = "success"
	InstallError   InstallStatus = "error"
)

// InstallReport summarizes every stage of an install.
type InstallReport struct {
	Version    string          `json:"version"`
	Name       string          `json:"name"`
	Status     InstallStatus   `json:"status"`
	Descriptor string          `json:"descriptor"`
	Libraries  BatchSummary    `json:"libraries"`
	Natives    []ExtractResult `json:"natives,omitempty"`
	AssetIndex string          `json:"asset_index,omitempty"`
	Assets     BatchSummary    `json:"assets"`
}

// Failed reports the number of failed fetches and extractions.
func (r *InstallReport) Failed() int {
	n := r.Libraries.Failed + r.Assets.Failed
	for _, x := range r.Natives {
		if x.Status != ExtractSuccess {
			n++
		}
	}
	return n
}

// ExtractStatus is the outcome of a native extraction.
type ExtractStatus string

const (
	ExtractSuccess ExtractStatus = "success"
	ExtractError   ExtractStatus = "error"
)

// ExtractResult is returned by the native extractor.
type ExtractResult struct {
	Archive   string        `json:"archive"`
	Status    ExtractStatus `json:"status"`
	Detail    string        `json:"detail,omitempty"`
	Extracted []string      `json:"extracted,omitempty"`
}
