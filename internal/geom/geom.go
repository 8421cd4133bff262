package geom

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
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/simplify"

	"github.com/geocore/vtserver/internal/grid"
)

// Geometry is the tagged variant over the seven OGC simple-feature types
// that the datasource adapters and the pipeline operate on. paulmach/orb's
// orb.Geometry interface already is this sum type (Point, MultiPoint,
// LineString, MultiLineString, Polygon, MultiPolygon, Collection), so the
// pipeline is built directly on it instead of re-declaring one.
type Geometry = orb.Geometry

// TileType enumerates the MVT geometry-type tags a pixel-space geometry
// will be encoded as.
type TileType int

const (
	TypeUnknown TileType = iota
	TypePoint
	TypeLineString
	TypePolygon
)

// TilePoint is an integer tile-pixel coordinate.
type TilePoint struct {
	X, Y int32
}

// TilePath is an ordered sequence of tile-pixel points: a MultiPoint's
// point list, one LineString/ring's vertices.
type TilePath []TilePoint

// TileGeometry is a feature's geometry after clipping, simplification, and
// screen transform: ready for MVT command-stream emission. Paths holds,
// depending on Type: the single point list (Point/MultiPoint), each
// path (LineString/MultiLineString), or each ring in emission order,
// exterior followed by its holes, one polygon after another
// (Polygon/MultiPolygon).
type TileGeometry struct {
	Type  TileType
	Paths []TilePath
	// RingExterior marks, index-for-index with Paths, whether a polygon
	// ring is an exterior ring (true) or a hole (false). Unused for
	// Point/LineString geometries.
	RingExterior []bool
}

// Empty reports whether the geometry has no emittable content.
func (g TileGeometry) Empty() bool {
	return len(g.Paths) == 0
}

// Options configures one pipeline run for a single layer at a single zoom.
type Options struct {
	Grid        *grid.Grid
	Zoom        int
	TileExtent  grid.Extent // tile bbox in grid CRS, unbuffered
	BufferPx    float64     // buffer_size, in pixels
	MakeValid   bool
	Simplify    bool
	Tolerance   float64 // grid units; 0 means "use the default pixel_width(z)/2"
	PixelExtent int     // MVT layer extent, e.g. 4096
}

// bufferedExtent returns the tile bbox expanded by BufferPx pixels,
// converted to grid units at this zoom.
func (o Options) bufferedExtent() (grid.Extent, error) {
	pw, err := o.Grid.PixelWidth(o.Zoom)
	if err != nil {
		return grid.Extent{}, err
	}
	return o.TileExtent.Expand(o.BufferPx * pw), nil
}

// boundOf converts a grid.Extent to an orb.Bound for use with orb/clip and
// orb/simplify, which are CRS-agnostic and operate purely on coordinate
// values.
func boundOf(e grid.Extent) orb.Bound {
	return orb.Bound{Min: orb.Point{e.MinX, e.MinY}, Max: orb.Point{e.MaxX, e.MaxY}}
}

// Reject implements the bounding-box reject stage (§4.3 step 3): true
// means the feature should be dropped because its envelope does not
// intersect the tile bbox expanded by the configured buffer.
func Reject(g Geometry, o Options) (bool, error) {
	buffered, err := o.bufferedExtent()
	if err != nil {
		return false, err
	}
	fb := g.Bound()
	tb := boundOf(buffered)
	gridFb := grid.Extent{MinX: fb.Min[0], MinY: fb.Min[1], MaxX: fb.Max[0], MaxY: fb.Max[1]}
	gridTb := grid.Extent{MinX: tb.Min[0], MinY: tb.Min[1], MaxX: tb.Max[0], MaxY: tb.Max[1]}
	return !gridFb.Intersects(gridTb), nil
}

// Clip implements §4.3 step 5: clip to the tile bbox plus buffer. Clipping
// is purely geometric (coordinate-space), so orb/clip's bound-clip works
// regardless of the grid's CRS.
func Clip(g Geometry, o Options) (Geometry, error) {
	buffered, err := o.bufferedExtent()
	if err != nil {
		return nil, err
	}
	clipped := clip.Geometry(boundOf(buffered), g)
	return clipped, nil
}

// DefaultTolerance is the fallback Douglas-Peucker tolerance when a layer
// declares simplify=true without an explicit tolerance: pixel_width(z)/2,
// i.e. half a grid pixel at this zoom.
func DefaultTolerance(o Options) (float64, error) {
	pw, err := o.Grid.PixelWidth(o.Zoom)
	if err != nil {
		return 0, err
	}
	return pw / 2, nil
}

// Simplify implements §4.3 step 6: Douglas-Peucker simplification at the
// given tolerance (grid units).
func Simplify(g Geometry, tolerance float64) Geometry {
	if tolerance <= 0 {
		return g
	}
	return simplify.DouglasPeucker(tolerance).Simplify(g)
}

// Repair is the Go-side validity-repair fallback used by datasource
// adapters that have no SQL make-valid function available (the
// vector_file adapter). SQL-backed adapters perform make-valid inside the
// query itself (e.g. ST_MakeValid) per §4.3 step 4, so this is only
// invoked there as a final degenerate-result check. Repair closes open
// rings and drops rings collapsed to fewer than 3 distinct points; it
// reports ok=false when nothing emittable survives.
func Repair(g Geometry) (Geometry, bool) {
	switch t := g.(type) {
	case orb.Polygon:
		fixed := repairPolygon(t)
		if len(fixed) == 0 {
			return nil, false
		}
		return fixed, true
	case orb.MultiPolygon:
		var out orb.MultiPolygon
		for _, p := range t {
			if fixed := repairPolygon(p); len(fixed) > 0 {
				out = append(out, fixed)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case orb.LineString:
		if len(t) < 2 {
			return nil, false
		}
		return t, true
	case orb.MultiLineString:
		var out orb.MultiLineString
		for _, l := range t {
			if len(l) >= 2 {
				out = append(out, l)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return g, true
	}
}

func repairPolygon(p orb.Polygon) orb.Polygon {
	var out orb.Polygon
	for _, ring := range p {
		r := closeRing(ring)
		// r is closed, so 3 distinct vertices take 4 stored points.
		if len(distinctPoints(r)) < 4 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return r
	}
	if r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

func distinctPoints(r orb.Ring) orb.Ring {
	var out orb.Ring
	for i, p := range r {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
