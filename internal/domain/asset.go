package domain

// AssetIndex maps logical asset names to content-addressed objects.
type AssetIndex struct {
	Objects        map[string]AssetObject `json:"objects"`
	Virtual        bool                   `json:"virtual,omitempty"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
}

// AssetObject is a single content-addressed object.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// ShardPath returns the "<xx>/<hash>" path of the object below the objects directory.
func (o AssetObject) ShardPath() string {
	if len(o.Hash) < 2 {
		return o.Hash
	}
	return o.Hash[:2] + "/" + o.Hash
}
