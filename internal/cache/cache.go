// Package cache holds the most recent temperature readings for the
// configured devices and refreshes them on a fixed interval, so that
// serving a client never triggers device I/O.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/disktempd/internal/device"
	"codeberg.org/mutker/disktempd/internal/errors"
	"codeberg.org/mutker/disktempd/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the complete, ordered set of current readings. A snapshot
// is immutable once published; the cache replaces it as a whole.
type Snapshot struct {
	Readings    []device.Reading
	RefreshedAt time.Time
}

// Cache owns the current snapshot. The device list and its order are
// fixed at construction; every snapshot has exactly one reading per
// configured device, in configured order.
type Cache struct {
	reader   device.Reader
	devices  []device.Spec
	interval time.Duration
	current  atomic.Pointer[Snapshot]
}

func New(reader device.Reader, devices []device.Spec, interval time.Duration) *Cache {
	return &Cache{
		reader:   reader,
		devices:  devices,
		interval: interval,
	}
}

// Refresh reads every configured device and publishes a new snapshot.
// Reads fan out concurrently; results are reassembled by index so the
// configured order is preserved. A failed read contributes an error
// reading without aborting the rest of the cycle.
func (c *Cache) Refresh(ctx context.Context) *Snapshot {
	readings := make([]device.Reading, len(c.devices))

	var g errgroup.Group
	for i, spec := range c.devices {
		i, spec := i, spec
		g.Go(func() error {
			readings[i] = c.reader.Read(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	snapshot := &Snapshot{
		Readings:    readings,
		RefreshedAt: time.Now(),
	}
	c.current.Store(snapshot)

	logger.Debug().
		Int("devices", len(readings)).
		Time("refreshed_at", snapshot.RefreshedAt).
		Msg("Cache refreshed")

	return snapshot
}

// Snapshot returns the current snapshot without triggering I/O. It
// fails only before the first Refresh has completed.
func (c *Cache) Snapshot() (*Snapshot, error) {
	snapshot := c.current.Load()
	if snapshot == nil {
		return nil, errors.New().New(errors.ErrCacheNotReady)
	}

	return snapshot, nil
}

// Run refreshes the cache on the configured interval until ctx is
// canceled. The timer is re-armed only after a refresh completes, so
// refreshes never overlap: a slow cycle delays the next one instead of
// stacking up behind it. Callers wanting a populated cache before Run
// starts should call Refresh once themselves.
func (c *Cache) Run(ctx context.Context) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			c.Refresh(ctx)
			timer.Reset(c.interval)
		}
	}
}
