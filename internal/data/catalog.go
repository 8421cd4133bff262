package data

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
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/datasource"
	"github.com/geocore/vtserver/internal/geom"
	"github.com/geocore/vtserver/internal/grid"
	mvt "github.com/geocore/vtserver/internal/mvtencoding"
	"github.com/geocore/vtserver/internal/tileset"
)

// ErrNotFound is returned for an unknown tileset or datasource name.
var ErrNotFound = errors.New("not found")

// defaultTileExtent is the MVT layer extent used when a layer does not
// override it (§3 Data Model: "extent, default 4096").
const defaultTileExtent = 4096

// mapGridError folds grid.ErrZoomOutOfRange into ErrNotFound so a zoom
// beyond the grid's own resolution table (not just the tileset's
// narrower effective range) still surfaces as a 404, not a 502.
func mapGridError(err error) error {
	if errors.Is(err, grid.ErrZoomOutOfRange) {
		return ErrNotFound
	}
	return err
}

// Catalog is the registry of configured datasources and tilesets, and
// the single place tile generation and TileJSON production happen; it
// replaces the teacher's DuckDB-only CatalogDB with a datasource-
// agnostic equivalent built on the tileset.Tileset and
// datasource.Adapter abstractions (§4 "Tileset model", "Datasource
// adapter").
type Catalog struct {
	datasources map[string]datasource.Adapter
	tilesets    map[string]*tileset.Tileset
}

// NewCatalog builds a Catalog from already-constructed datasources and
// tilesets (assembled by the caller from the Configuration struct).
func NewCatalog(datasources map[string]datasource.Adapter, tilesets map[string]*tileset.Tileset) *Catalog {
	return &Catalog{datasources: datasources, tilesets: tilesets}
}

func (c *Catalog) Tileset(name string) (*tileset.Tileset, error) {
	ts, ok := c.tilesets[name]
	if !ok {
		return nil, fmt.Errorf("tileset %q: %w", name, ErrNotFound)
	}
	return ts, nil
}

// Tilesets returns every configured tileset, sorted by name for stable
// listing responses.
func (c *Catalog) Tilesets() []*tileset.Tileset {
	out := make([]*tileset.Tileset, 0, len(c.tilesets))
	for _, ts := range c.tilesets {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Datasources() map[string]datasource.Adapter { return c.datasources }

// Ping exercises every datasource once, for the health endpoint; a
// datasource that exposes a Pinger is checked, others are assumed
// healthy once opened.
func (c *Catalog) Ping(ctx context.Context) map[string]error {
	results := make(map[string]error, len(c.datasources))
	for name, ds := range c.datasources {
		if p, ok := ds.(interface{ Ping(context.Context) error }); ok {
			results[name] = p.Ping(ctx)
		} else {
			results[name] = nil
		}
	}
	return results
}

// GenerateTile runs the full pipeline of §4.3 for one tile: for each of
// the tileset's layers active at z, query the layer's datasource,
// reject/repair/clip/simplify the returned geometries, project to
// tile-pixel space and encode an MVT layer, then marshal every
// non-empty layer into a single tile. An entirely empty result set
// across all layers yields a zero-length tile (§8 E3). A zoom outside
// the tileset's effective range (§4.6) is reported as ErrNotFound
// rather than reaching the grid or datasource layer at all (§8 E2).
func (c *Catalog) GenerateTile(ctx context.Context, tilesetName string, z, x, y int) ([]byte, error) {
	ts, err := c.Tileset(tilesetName)
	if err != nil {
		return nil, err
	}
	if !ts.InZoomRange(z) {
		return nil, fmt.Errorf("tileset %s: zoom %d: %w", ts.Name, z, ErrNotFound)
	}
	g := ts.Grid

	bbox, err := g.TileExtent(x, y, z)
	if err != nil {
		return nil, fmt.Errorf("tileset %s: %w", ts.Name, mapGridError(err))
	}
	pixelWidth, err := g.PixelWidth(z)
	if err != nil {
		return nil, fmt.Errorf("tileset %s: %w", ts.Name, mapGridError(err))
	}
	scaleDenom, err := g.ScaleDenominator(z)
	if err != nil {
		return nil, fmt.Errorf("tileset %s: %w", ts.Name, mapGridError(err))
	}

	selections := ts.LayersForZoom(z)
	mvtLayers := make([]*mvt.Layer, 0, len(selections))

	for _, sel := range selections {
		layer := sel.Layer
		ds, ok := c.datasources[layer.DatasourceName]
		if !ok {
			log.Warnf("tileset %s: layer %s: unknown datasource %q, skipping", ts.Name, layer.Name, layer.DatasourceName)
			continue
		}

		tol := layer.Tolerance.ForZoom(z)
		opts := geom.Options{
			Grid:        g,
			Zoom:        z,
			TileExtent:  bbox,
			BufferPx:    float64(layer.BufferSize),
			MakeValid:   layer.MakeValid,
			Simplify:    layer.Simplify,
			Tolerance:   tol,
			PixelExtent: defaultTileExtent,
		}
		if opts.Simplify && opts.Tolerance <= 0 {
			if def, err := geom.DefaultTolerance(opts); err == nil {
				opts.Tolerance = def
			}
		}

		features, err := ds.QueryFeatures(ctx, datasource.QueryRequest{
			Layer:            layer,
			Variant:          sel.Variant,
			TileBBox:         bbox,
			Zoom:             z,
			GridSRID:         g.SRID,
			ScaleDenominator: scaleDenom,
			PixelWidth:       pixelWidth,
			Limit:            layer.QueryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("tileset %s: layer %s: query: %w", ts.Name, layer.Name, err)
		}

		mvtLayer := mvt.NewLayer(layer.Name, defaultTileExtent)
		for _, f := range features {
			gm := f.Geometry
			if layer.MakeValid {
				fixed, ok := geom.Repair(gm)
				if !ok {
					continue
				}
				gm = fixed
			}
			if reject, err := geom.Reject(gm, opts); err != nil || reject {
				continue
			}
			clipped, err := geom.Clip(gm, opts)
			if err != nil || clipped == nil {
				continue
			}
			if opts.Simplify {
				clipped = geom.Simplify(clipped, opts.Tolerance)
			}
			tg := geom.ScreenTransform(clipped, opts)
			if tg.Empty() {
				continue
			}
			mvtLayer.AddFeature(mvt.Feature{
				ID:         featureID(layer.FidField, f.Attributes),
				Attributes: convertAttributes(f.Attributes),
				Geometry:   tg,
			})
		}

		if !mvtLayer.Empty() {
			mvtLayers = append(mvtLayers, mvtLayer)
		}
	}

	return mvt.Marshal(mvtLayers), nil
}

// featureID resolves the optional fid_field into an MVT feature id: only
// an unsigned-convertible value qualifies, per §4.4.
func featureID(fidField string, attrs map[string]any) *uint64 {
	if fidField == "" {
		return nil
	}
	v, ok := attrs[fidField]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case uint64:
		return &n
	case int64:
		if n >= 0 {
			u := uint64(n)
			return &u
		}
	case int:
		if n >= 0 {
			u := uint64(n)
			return &u
		}
	case float64:
		if n >= 0 {
			u := uint64(n)
			return &u
		}
	}
	return nil
}

// convertAttributes maps an adapter's loosely-typed attribute values
// into the encoder's tagged Value scalars.
func convertAttributes(attrs map[string]any) map[string]mvt.Value {
	out := make(map[string]mvt.Value, len(attrs))
	for k, v := range attrs {
		switch n := v.(type) {
		case nil:
			continue
		case string:
			out[k] = mvt.StringValue(n)
		case bool:
			out[k] = mvt.BoolValue(n)
		case int:
			out[k] = mvt.SintValue(int64(n))
		case int32:
			out[k] = mvt.SintValue(int64(n))
		case int64:
			out[k] = mvt.SintValue(n)
		case uint64:
			out[k] = mvt.UintValue(n)
		case float32:
			out[k] = mvt.FloatValue(n)
		case float64:
			out[k] = mvt.DoubleValue(n)
		default:
			out[k] = mvt.StringValue(fmt.Sprintf("%v", n))
		}
	}
	return out
}
