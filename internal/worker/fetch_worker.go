package worker

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/veranemoloko/mc-fetch/internal/config"
	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/metrics"
	"github.com/veranemoloko/mc-fetch/internal/storage"
	"github.com/veranemoloko/mc-fetch/internal/verify"
)

const (
	chunkSize = 64 * 1024

	// maxDocumentSize bounds documents read into memory by Get.
	maxDocumentSize = 64 << 20
)

var (
	errSizeMismatch   = errors.New("size mismatch")
	errDigestMismatch = errors.New("sha1 mismatch")
	errStalled        = errors.New("read timed out")
)

// Options controls retries and timeouts of a FetchWorker.
type Options struct {
	MaxRetries     int
	RequestTimeout time.Duration
	BackoffBase    time.Duration
	BackoffCeiling time.Duration
}

// OptionsFromConfig extracts worker options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxRetries:     cfg.MaxRetries,
		RequestTimeout: cfg.RequestTimeout,
		BackoffBase:    cfg.BackoffBase,
		BackoffCeiling: cfg.BackoffCeiling,
	}
}

// FetchWorker downloads one URL to one destination with inline SHA-1
// verification, retries with capped exponential backoff, and skips the
// network entirely when the destination already verifies.
type FetchWorker struct {
	fileStorage *storage.FileStorage
	httpClient  *http.Client
	opts        Options
	logger      *slog.Logger
}

// NewFetchWorker creates a FetchWorker. The client is shared and must be safe for concurrent use.
func NewFetchWorker(fileStorage *storage.FileStorage, client *http.Client, opts Options, logger *slog.Logger) *FetchWorker {
	return &FetchWorker{
		fileStorage: fileStorage,
		httpClient:  client,
		opts:        opts,
		logger:      logger,
	}
}

// Fetch downloads item and never fails past its boundary: every outcome is in the result.
func (w *FetchWorker) Fetch(ctx context.Context, item domain.WorkItem) domain.FetchResult {
	metrics.FetchesTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	result := domain.FetchResult{
		Item:   item,
		Status: domain.FetchError,
	}

	if item.Verify && w.fileStorage.FileExists(item.Dest) {
		ok, err := verify.Verify(item.Dest, item.Size, item.SHA1)
		if err == nil && ok {
			metrics.FetchesCached.Inc()
			result.Status = domain.FetchSuccess
			result.Cached = true
			result.Detail = fmt.Sprintf("already verified: %s", item.URL)
			return result
		}
	}

	err := w.retry(ctx, func() error {
		result.Attempts++
		n, err := w.download(ctx, item, result.Attempts)
		if err != nil {
			return err
		}
		result.Bytes = n
		return nil
	}, func(err error, next time.Duration) {
		kind := "error"
		if isTimeout(err) {
			kind = "timeout"
		}
		metrics.FetchRetries.WithLabelValues(kind).Inc()
		w.logger.Warn("fetch failed, retrying",
			"kind", kind,
			"url", item.URL,
			"attempt", result.Attempts,
			"max_retries", w.opts.MaxRetries,
			"backoff", next,
			"error", err,
		)
	})
	if err == nil {
		metrics.FetchesSuccess.Inc()
		metrics.FetchBytes.Add(float64(result.Bytes))
		result.Status = domain.FetchSuccess
		result.Detail = fmt.Sprintf("download complete: %s", item.URL)
		return result
	}

	metrics.FetchesFailed.Inc()
	result.Detail = fmt.Sprintf("max retries exceeded: %s - %v", item.URL, err)
	w.logger.Error("fetch failed",
		"url", item.URL,
		"attempts", result.Attempts,
		"error", err,
	)
	return result
}

// Get reads a metadata document into memory, retrying like Fetch.
func (w *FetchWorker) Get(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	attempt := 0
	err := w.retry(ctx, func() error {
		attempt++
		var err error
		data, err = w.get(ctx, url)
		return err
	}, func(err error, next time.Duration) {
		w.logger.Warn("document fetch failed, retrying", "url", url, "attempt", attempt, "backoff", next, "error", err)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return data, nil
}

// newBackOff returns the delay policy between attempts: base, 2*base, 4*base
// and so on, capped at the ceiling, without jitter.
func (w *FetchWorker) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.opts.BackoffBase
	b.MaxInterval = w.opts.BackoffCeiling
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// retry runs op up to MaxRetries+1 times. A cancelled ctx stops it before the
// next attempt and during the wait.
func (w *FetchWorker) retry(ctx context.Context, op func() error, notify backoff.Notify) error {
	retries := w.opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), uint64(retries)), ctx)
	return backoff.RetryNotify(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op()
	}, policy, notify)
}

func (w *FetchWorker) get(ctx context.Context, url string) ([]byte, error) {
	if w.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}

func (w *FetchWorker) download(ctx context.Context, item domain.WorkItem, attempt int) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stalled atomic.Bool
	var timer *time.Timer
	if w.opts.RequestTimeout > 0 {
		timer = time.AfterFunc(w.opts.RequestTimeout, func() {
			stalled.Store(true)
			cancel()
		})
		defer timer.Stop()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, stallErr(err, &stalled)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("bad status: %s", resp.Status)
	}

	w.logger.Debug("downloading",
		"url", item.URL,
		"dest", item.Dest,
		"size", item.Size,
		"attempt", attempt,
	)

	file, err := w.fileStorage.CreateFile(item.Dest)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	var hasher hash.Hash
	var dst io.Writer = file
	if item.SHA1 != "" {
		hasher = sha1.New()
		dst = io.MultiWriter(file, hasher)
	}

	written, copyErr := w.copyWithContext(ctx, dst, resp.Body, timer)
	closeErr := file.Close()
	if copyErr != nil {
		w.discard(item.Dest)
		return written, stallErr(fmt.Errorf("copy data: %w", copyErr), &stalled)
	}
	if closeErr != nil {
		w.discard(item.Dest)
		return written, fmt.Errorf("close file: %w", closeErr)
	}

	if item.Size > 0 && written != item.Size {
		w.logger.Warn("size mismatch", "url", item.URL, "expected", item.Size, "got", written)
		w.discard(item.Dest)
		return written, fmt.Errorf("%w: expected %d, got %d", errSizeMismatch, item.Size, written)
	}

	if hasher != nil {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !verify.Equal(got, item.SHA1) {
			w.logger.Warn("sha1 mismatch", "url", item.URL, "expected", item.SHA1, "got", got)
			w.discard(item.Dest)
			return written, fmt.Errorf("%w: expected %s, got %s", errDigestMismatch, item.SHA1, got)
		}
	}

	return written, nil
}

// copyWithContext streams src into dst, re-arming the stall timer after every chunk.
func (w *FetchWorker) copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, stall *time.Timer) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
			nr, err := src.Read(buf)
			if nr > 0 {
				if stall != nil {
					stall.Reset(w.opts.RequestTimeout)
				}
				nw, err := dst.Write(buf[0:nr])
				if nw > 0 {
					total += int64(nw)
				}
				if err != nil {
					return total, err
				}
				if nr != nw {
					return total, io.ErrShortWrite
				}
			}
			if err != nil {
				if err == io.EOF {
					return total, nil
				}
				return total, err
			}
		}
	}
}

func (w *FetchWorker) discard(path string) {
	if err := w.fileStorage.Remove(path); err != nil {
		w.logger.Warn("failed to remove partial file", "path", path, "error", err)
	}
}

func stallErr(err error, stalled *atomic.Bool) error {
	if stalled.Load() {
		return fmt.Errorf("%w: %v", errStalled, err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, errStalled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
