package artifact

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	errpkg "github.com/veranemoloko/mc-fetch/internal/errors"
)

// AssetPlan is the work list for missing asset objects.
type AssetPlan struct {
	Batch   *domain.Batch
	Total   int
	Present int
	Invalid int
	Index   *domain.AssetIndex
}

// AssetIndexItem is the work item for assets/indexes/<id>.json.
func (r *Resolver) AssetIndexItem(desc *domain.VersionDescriptor) (domain.WorkItem, error) {
	if desc == nil || desc.AssetIndex == nil || desc.AssetIndex.URL == "" {
		return domain.WorkItem{}, fmt.Errorf("%w: assetIndex", errpkg.ErrMissingField)
	}
	id := desc.AssetIndex.ID
	if id == "" {
		id = desc.Assets
	}
	if id == "" {
		return domain.WorkItem{}, fmt.Errorf("%w: assetIndex.id", errpkg.ErrMissingField)
	}
	return domain.WorkItem{
		URL:    r.rewriter.Rewrite(desc.AssetIndex.URL),
		Dest:   r.fileStorage.AssetIndexPath(id),
		Size:   desc.AssetIndex.Size,
		SHA1:   desc.AssetIndex.SHA1,
		Verify: true,
	}, nil
}

// Assets reads the asset index at indexPath and queues every object not yet
// present at its shard path.
func (r *Resolver) Assets(indexPath string) (*AssetPlan, error) {
	var index domain.AssetIndex
	if err := r.fileStorage.ReadJSON(indexPath, &index); err != nil {
		return nil, fmt.Errorf("read asset index: %w", err)
	}
	if index.Objects == nil {
		return nil, fmt.Errorf("%w: objects", errpkg.ErrMissingField)
	}

	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	plan := &AssetPlan{
		Batch: domain.NewBatch(),
		Total: len(names),
		Index: &index,
	}
	base := r.rewriter.AssetsBase()

	for _, name := range names {
		obj := index.Objects[name]
		if !validHash(obj.Hash) {
			plan.Invalid++
			r.logger.Warn("skipping asset with invalid hash", "asset", name, "hash", obj.Hash)
			continue
		}
		shard := obj.ShardPath()
		dest := r.fileStorage.ObjectPath(shard)
		if r.fileStorage.FileExists(dest) {
			plan.Present++
			continue
		}
		plan.Batch.Add(domain.WorkItem{
			URL:    base + shard,
			Dest:   dest,
			Size:   obj.Size,
			SHA1:   obj.Hash,
			Verify: true,
		})
	}

	r.logger.Info("asset plan built",
		"objects", plan.Total,
		"present", plan.Present,
		"missing", plan.Batch.Len(),
	)
	return plan, nil
}

func validHash(h string) bool {
	if len(h) < 2 || len(h)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
