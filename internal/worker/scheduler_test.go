package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/metrics"
)

func TestEffectiveWorkers(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		items     int
		autoScale bool
		want      int
	}{
		{name: "auto-scale caps to items", requested: 64, items: 3, autoScale: true, want: 3},
		{name: "auto-scale keeps smaller request", requested: 2, items: 10, autoScale: true, want: 2},
		{name: "fixed count kept", requested: 64, items: 3, autoScale: false, want: 64},
		{name: "minimum one", requested: 0, items: 5, autoScale: false, want: 1},
		{name: "empty batch", requested: 8, items: 0, autoScale: true, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveWorkers(tt.requested, tt.items, tt.autoScale))
		})
	}
}

type inFlight struct {
	mu      sync.Mutex
	current int
	max     int
}

func (f *inFlight) enter() {
	f.mu.Lock()
	f.current++
	if f.current > f.max {
		f.max = f.current
	}
	f.mu.Unlock()
}

func (f *inFlight) leave() {
	f.mu.Lock()
	f.current--
	f.mu.Unlock()
}

func TestScheduler_Run_FailSoftAggregation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, r.URL.Path)
	}))
	defer server.Close()

	opts := testOptions()
	opts.MaxRetries = 1
	w, dir := newTestWorker(t, opts)
	s := NewScheduler(w, true, newTestLogger())

	var items []domain.WorkItem
	for _, name := range []string{"a", "b", "missing"} {
		items = append(items, domain.WorkItem{
			URL:  server.URL + "/" + name,
			Dest: filepath.Join(dir, name),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := s.Run(ctx, items, 32)
	require.Len(t, results, 3)

	byURL := make(map[string]domain.FetchResult)
	for _, r := range results {
		byURL[r.Item.URL] = r
	}
	assert.True(t, byURL[server.URL+"/a"].OK())
	assert.True(t, byURL[server.URL+"/b"].OK())
	assert.False(t, byURL[server.URL+"/missing"].OK())

	data, err := os.ReadFile(filepath.Join(dir, "b"))
	require.NoError(t, err)
	assert.Equal(t, "/b", string(data))

	assert.Equal(t, float64(len(items)), testutil.ToFloat64(metrics.BatchWorkers), "auto-scale caps workers at the item count")

	summary := Summarize(results)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, server.URL+"/missing", summary.Failures[0].Item.URL)
}

func TestScheduler_Run_RespectsWorkerLimit(t *testing.T) {
	var flight inFlight
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flight.enter()
		defer flight.leave()
		time.Sleep(10 * time.Millisecond)
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	w, dir := newTestWorker(t, testOptions())
	s := NewScheduler(w, false, newTestLogger())

	var items []domain.WorkItem
	for i := 0; i < 12; i++ {
		items = append(items, domain.WorkItem{
			URL:  fmt.Sprintf("%s/%d", server.URL, i),
			Dest: filepath.Join(dir, fmt.Sprint(i)),
		})
	}

	results := s.Run(context.Background(), items, 3)

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, flight.max, 3)
	assert.Equal(t, 12, Summarize(results).Succeeded)
}

func TestScheduler_Run_Empty(t *testing.T) {
	w, _ := newTestWorker(t, testOptions())
	s := NewScheduler(w, true, newTestLogger())

	assert.Empty(t, s.Run(context.Background(), nil, 4))
}
