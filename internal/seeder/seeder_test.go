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
	"testing"

	"github.com/paulmach/orb"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/data"
	"github.com/geocore/vtserver/internal/datasource"
	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

func TestPlanVisitsEveryTileExactlyOnce(t *testing.T) {
	ts := &tileset.Tileset{Name: "t", Grid: grid.WebMercator()}

	tiles := Plan(ts, 0, 2)

	seen := make(map[Tile]int)
	for _, tl := range tiles {
		seen[tl]++
	}

	wantCount := 0
	for z := 0; z <= 2; z++ {
		n := 1 << uint(z)
		wantCount += n * n
	}
	if len(tiles) != wantCount {
		t.Fatalf("expected %d tiles, got %d", wantCount, len(tiles))
	}
	for tl, n := range seen {
		if n != 1 {
			t.Errorf("tile %+v visited %d times, want 1", tl, n)
		}
	}
}

type emptyAdapter struct{}

func (emptyAdapter) DescribeLayer(ctx context.Context, l *tileset.Layer) (datasource.LayerDescription, error) {
	return datasource.LayerDescription{}, nil
}
func (emptyAdapter) DetectExtent(ctx context.Context, l *tileset.Layer) (grid.Extent, error) {
	return grid.Extent{}, nil
}
func (emptyAdapter) QueryFeatures(ctx context.Context, req datasource.QueryRequest) ([]datasource.Feature, error) {
	return nil, nil
}
func (emptyAdapter) Close() error { return nil }

func TestRunSeedsEveryTileOfASmallPyramid(t *testing.T) {
	g := grid.WebMercator()
	layer := &tileset.Layer{Name: "l", DatasourceName: "ds", GeometryColumn: "geom", MaxZoom: 2}
	layer.NormalizeVariants()
	ts := &tileset.Tileset{Name: "empty", Grid: g, Layers: []*tileset.Layer{layer}}

	cat := data.NewCatalog(
		map[string]datasource.Adapter{"ds": emptyAdapter{}},
		map[string]*tileset.Tileset{"empty": ts},
	)
	cch := cache.New(nil, nil)

	s := New(cat, cch, Options{Workers: 2, QueueDepth: 1})
	progress, err := s.Run(context.Background(), "empty", 0, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantTotal := int64(0)
	for z := 0; z <= 2; z++ {
		n := int64(1) << uint(z)
		wantTotal += n * n
	}
	if progress.Total != wantTotal {
		t.Errorf("expected total=%d, got %d", wantTotal, progress.Total)
	}
	// Every tile is empty (no features), so none are persisted, but all
	// are still visited and counted as completed.
	if progress.Completed != wantTotal {
		t.Errorf("expected completed=%d, got %d", wantTotal, progress.Completed)
	}
	if progress.Failed != 0 {
		t.Errorf("expected no failures, got %d", progress.Failed)
	}
}

type countingAdapter struct {
	calls int
}

func (c *countingAdapter) DescribeLayer(ctx context.Context, l *tileset.Layer) (datasource.LayerDescription, error) {
	return datasource.LayerDescription{}, nil
}
func (c *countingAdapter) DetectExtent(ctx context.Context, l *tileset.Layer) (grid.Extent, error) {
	return grid.Extent{}, nil
}
func (c *countingAdapter) QueryFeatures(ctx context.Context, req datasource.QueryRequest) ([]datasource.Feature, error) {
	c.calls++
	return []datasource.Feature{{Geometry: orb.Point{
		(req.TileBBox.MinX + req.TileBBox.MaxX) / 2,
		(req.TileBBox.MinY + req.TileBBox.MaxY) / 2,
	}}}, nil
}
func (c *countingAdapter) Close() error { return nil }

func TestRunOverwriteRebuildsCachedTiles(t *testing.T) {
	g := grid.WebMercator()
	layer := &tileset.Layer{Name: "l", DatasourceName: "ds", GeometryColumn: "geom", MaxZoom: 0}
	layer.NormalizeVariants()
	ts := &tileset.Tileset{Name: "t", Grid: g, Layers: []*tileset.Layer{layer}}

	adapter := &countingAdapter{}
	cat := data.NewCatalog(
		map[string]datasource.Adapter{"ds": adapter},
		map[string]*tileset.Tileset{"t": ts},
	)
	memory, err := cache.NewTileCache(100, 64)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	cch := cache.New(memory, nil)

	s := New(cat, cch, Options{Workers: 1, QueueDepth: 1})
	if _, err := s.Run(context.Background(), "t", 0, 0); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if adapter.calls != 1 {
		t.Fatalf("expected one query after the first run, got %d", adapter.calls)
	}

	if _, err := s.Run(context.Background(), "t", 0, 0); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if adapter.calls != 1 {
		t.Errorf("expected the cached tile to be skipped without --overwrite, got %d total calls", adapter.calls)
	}

	overwrite := New(cat, cch, Options{Workers: 1, QueueDepth: 1, Overwrite: true})
	progress, err := overwrite.Run(context.Background(), "t", 0, 0)
	if err != nil {
		t.Fatalf("overwrite Run: %v", err)
	}
	if adapter.calls != 2 {
		t.Errorf("expected --overwrite to re-query the already-cached tile, got %d total calls", adapter.calls)
	}
	if progress.Skipped != 0 {
		t.Errorf("expected no skips under --overwrite, got %d", progress.Skipped)
	}
}

func TestRunUnknownTileset(t *testing.T) {
	cat := data.NewCatalog(nil, map[string]*tileset.Tileset{})
	s := New(cat, cache.New(nil, nil), Options{})

	if _, err := s.Run(context.Background(), "nope", 0, 1); err == nil {
		t.Error("expected an error for an unknown tileset")
	}
}
