// Package snapshot persists the full in-memory state to a single JSON
// file and restores it at startup.
//
// Writes are asynchronous and coalescing: every mutation signals the
// flusher through a capacity-1 trigger channel, so a burst of mutations
// collapses into one disk write. Shutdown performs a final synchronous
// flush.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/upright/internal/domain/model"
	"github.com/okian/upright/pkg/logger"
	"github.com/okian/upright/pkg/metrics"
)

// Default writer configuration constants.
const (
	defaultPath     = "data/upright.json"
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// Source exposes the state being persisted.
type Source interface {
	Snapshot(ctx context.Context) model.Snapshot
	Restore(ctx context.Context, snap model.Snapshot)
}

// Writer loads and flushes snapshots for a Source.
type Writer struct {
	source  Source
	path    string
	enabled bool
	trigger chan struct{}
	done    chan struct{}
	log     logger.Logger
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithPath sets the snapshot file location.
func WithPath(path string) Option {
	return func(w *Writer) {
		if path != "" {
			w.path = path
		}
	}
}

// WithEnabled toggles persistence entirely. Disabled writers make Load,
// Trigger and Flush no-ops, which keeps tests off the filesystem.
func WithEnabled(enabled bool) Option {
	return func(w *Writer) {
		w.enabled = enabled
	}
}

// WithLogger sets a custom logger for the writer.
func WithLogger(log logger.Logger) Option {
	return func(w *Writer) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWriter creates a snapshot writer for source.
func NewWriter(source Source, opts ...Option) *Writer {
	w := &Writer{
		source:  source,
		path:    defaultPath,
		enabled: true,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.Get().Named("snapshot")
	}
	return w
}

// Load restores the source from disk. A missing or unreadable file is
// not an error; the service starts empty.
func (w *Writer) Load(ctx context.Context) error {
	if !w.enabled {
		return nil
	}
	raw, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		w.log.Warn(ctx, "snapshot file is corrupt; starting empty",
			logger.String("path", w.path), logger.Error(err))
		return nil
	}
	w.source.Restore(ctx, snap)
	w.log.Info(ctx, "snapshot loaded",
		logger.String("path", w.path),
		logger.Int("sessions", len(snap.Sessions)),
		logger.Int("events", len(snap.Events)),
	)
	return nil
}

// Trigger signals the flusher without blocking. Concurrent triggers
// collapse into a single pending flush.
func (w *Writer) Trigger() {
	if !w.enabled {
		return
	}
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run drains triggers until ctx is canceled, then performs a final
// flush. Intended to run on its own goroutine.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)
	if !w.enabled {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			if err := w.Flush(context.Background()); err != nil {
				w.log.Error(context.Background(), "final snapshot flush failed", logger.Error(err))
			}
			return
		case <-w.trigger:
			if err := w.Flush(ctx); err != nil {
				w.log.Error(ctx, "snapshot flush failed", logger.Error(err))
			}
		}
	}
}

// Wait blocks until Run has exited.
func (w *Writer) Wait() {
	<-w.done
}

// Flush writes the current state synchronously. The write goes through
// a temp file and rename so a crash never leaves a torn snapshot.
func (w *Writer) Flush(ctx context.Context) error {
	if !w.enabled {
		return nil
	}
	start := time.Now()

	snap := w.source.Snapshot(ctx)
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(w.path), defaultDirMode); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, raw, defaultFileMode); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	metrics.RecordSnapshotWrite(float64(time.Since(start).Milliseconds()))
	return nil
}
