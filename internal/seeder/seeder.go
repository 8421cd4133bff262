package seeder

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"context"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/data"
	"github.com/geocore/vtserver/internal/tileset"
)

// Tile identifies a single pyramid tile, the producer/consumer queue's
// unit of work.
type Tile struct {
	Z, X, Y int
}

// Progress is a snapshot of the seeder's counters, taken when Run
// returns.
type Progress struct {
	Total     int64
	Completed int64
	Skipped   int64
	Failed    int64
}

// Options configures one seeding run.
type Options struct {
	Workers    int  // 0 selects runtime.NumCPU()
	QueueDepth int  // queue capacity is Workers * QueueDepth; 0 selects 4
	Overwrite  bool // rebuild tiles already present in the cache instead of skipping them
}

// Seeder walks a tileset's zoom pyramid, generating and caching every
// tile through a bounded worker pool, the way a CLI `generate` run
// pre-warms the cache ahead of traffic (§4.8; every tile of a pyramid
// is visited exactly once).
type Seeder struct {
	catalog *data.Catalog
	cache   *cache.Cache
	opts    Options

	completed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// New builds a Seeder over a Catalog and Cache, normalizing zero-valued
// Options to their runtime defaults.
func New(cat *data.Catalog, cch *cache.Cache, opts Options) *Seeder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 4
	}
	return &Seeder{catalog: cat, cache: cch, opts: opts}
}

// Plan enumerates every tile in [minZoom, maxZoom] for a tileset's grid,
// in row-major order zoom by zoom; zooms the grid does not define are
// skipped. Run's producer walks the same order onto the bounded queue
// rather than materializing the whole plan when the pyramid is large,
// but Plan is exposed directly for tests and dry-run reporting.
func Plan(ts *tileset.Tileset, minZoom, maxZoom int) []Tile {
	var tiles []Tile
	for z := minZoom; z <= maxZoom; z++ {
		lim, err := ts.Grid.TileLimits(ts.Grid.World, z)
		if err != nil {
			continue
		}
		for y := lim.MinY; y <= lim.MaxY; y++ {
			for x := lim.MinX; x <= lim.MaxX; x++ {
				tiles = append(tiles, Tile{Z: z, X: x, Y: y})
			}
		}
	}
	return tiles
}

// Run seeds tilesetName's cache for every tile in [minZoom, maxZoom],
// fanning work out across opts.Workers goroutines through a bounded
// channel, and stops at the first hard error (cooperative cancellation
// via ctx). A per-tile generation failure is counted and logged but does
// not abort the run; only a context cancellation or an unknown-tileset
// error does.
func (s *Seeder) Run(ctx context.Context, tilesetName string, minZoom, maxZoom int) (Progress, error) {
	ts, err := s.catalog.Tileset(tilesetName)
	if err != nil {
		return Progress{}, err
	}

	queue := make(chan Tile, s.opts.Workers*s.opts.QueueDepth)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(queue)
		for z := minZoom; z <= maxZoom; z++ {
			lim, err := ts.Grid.TileLimits(ts.Grid.World, z)
			if err != nil {
				continue
			}
			for y := lim.MinY; y <= lim.MaxY; y++ {
				for x := lim.MinX; x <= lim.MaxX; x++ {
					select {
					case queue <- Tile{Z: z, X: x, Y: y}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		}
		return nil
	})

	var total int64
	for z := minZoom; z <= maxZoom; z++ {
		if lim, err := ts.Grid.TileLimits(ts.Grid.World, z); err == nil {
			total += int64(lim.MaxX-lim.MinX+1) * int64(lim.MaxY-lim.MinY+1)
		}
	}

	for i := 0; i < s.opts.Workers; i++ {
		group.Go(func() error {
			for {
				select {
				case t, ok := <-queue:
					if !ok {
						return nil
					}
					s.seedOne(gctx, tilesetName, t)
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	err = group.Wait()
	return Progress{
		Total:     total,
		Completed: s.completed.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
	}, err
}

func (s *Seeder) seedOne(ctx context.Context, tilesetName string, t Tile) {
	key := cache.Key{Tileset: tilesetName, Z: t.Z, X: t.X, Y: t.Y}

	if !s.opts.Overwrite {
		if exists, err := s.cache.Exists(ctx, key); err == nil && exists {
			s.skipped.Add(1)
			return
		}
	}

	tileData, err := s.catalog.GenerateTile(ctx, tilesetName, t.Z, t.X, t.Y)
	if err != nil {
		log.Warnf("seed %s: tile %d/%d/%d: %v", tilesetName, t.Z, t.X, t.Y, err)
		s.failed.Add(1)
		return
	}

	// Empty tiles are legitimate (no features intersect) but are never
	// persisted, matching Cache.Put's own empty-skip.
	if len(tileData) > 0 {
		if err := s.cache.Put(ctx, key, tileData); err != nil {
			log.Warnf("seed %s: tile %d/%d/%d: cache put: %v", tilesetName, t.Z, t.X, t.Y, err)
			s.failed.Add(1)
			return
		}
	}
	s.completed.Add(1)
}
