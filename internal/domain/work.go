package domain

// WorkItem is one file to fetch. Size zero and an empty SHA1 mean "not known".
type WorkItem struct {
	URL    string `json:"url"`
	Dest   string `json:"dest"`
	Size   int64  `json:"size,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
	Verify bool   `json:"verify,omitempty"`
}

// FetchStatus is the outcome of a single fetch.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchError   FetchStatus = "error"
)

// FetchResult is produced exactly once per WorkItem.
type FetchResult struct {
	Item     WorkItem    `json:"item"`
	Status   FetchStatus `json:"status"`
	Detail   string      `json:"detail"`
	Bytes    int64       `json:"bytes"`
	Attempts int         `json:"attempts"`
	Cached   bool        `json:"cached,omitempty"`
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool {
	return r.Status == FetchSuccess
}

// Batch is an insertion-ordered work list keyed by URL.
type Batch struct {
	items []WorkItem
	seen  map[string]struct{}
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{seen: make(map[string]struct{})}
}

// Add appends the item unless its URL is already queued. It returns false on duplicates.
func (b *Batch) Add(item WorkItem) bool {
	if _, ok := b.seen[item.URL]; ok {
		return false
	}
	b.seen[item.URL] = struct{}{}
	b.items = append(b.items, item)
	return true
}

// Has reports whether url is already queued.
func (b *Batch) Has(url string) bool {
	_, ok := b.seen[url]
	return ok
}

// Items returns a copy of the queued items.
func (b *Batch) Items() []WorkItem {
	out := make([]WorkItem, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of queued items.
func (b *Batch) Len() int {
	return len(b.items)
}

// BatchSummary counts the outcomes of a scheduled batch.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Cached    int           `json:"cached"`
	Failed    int           `json:"failed"`
	Bytes     int64         `json:"bytes"`
	Failures  []FetchResult `json:"failures,omitempty"`
}
