package tileset

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
	"github.com/geocore/vtserver/internal/grid"
)

// QueryVariant is one zoom-bounded form of a layer's query. A variant
// without explicit bounds defaults to its owning layer's [MinZoom,
// MaxZoom] (applied by NormalizeVariants).
type QueryVariant struct {
	MinZoom, MaxZoom int
	HasBounds        bool
	SourceTable      string // table/view reference, mutually exclusive with SQL
	SQL              string // explicit query template with !bbox!/!zoom!/!scale_denominator!/!pixel_width! tokens
}

// Tolerance is a Douglas-Peucker tolerance expressed either as one scalar
// or as a zoom-keyed map (§3 Layer: "tolerance expression (scalar or
// zoom-keyed map)").
type Tolerance struct {
	Scalar float64
	ByZoom map[int]float64
}

// ForZoom resolves the tolerance at z; 0 signals "use the pipeline
// default" (pixel_width(z)/2).
func (t Tolerance) ForZoom(z int) float64 {
	if t.ByZoom != nil {
		if v, ok := t.ByZoom[z]; ok {
			return v
		}
	}
	return t.Scalar
}

// Layer is one named feature stream, as described in §3 Data Model.
type Layer struct {
	Name           string
	DatasourceName string
	TableName      string // source table/view within the datasource, distinct from DatasourceName
	GeometryColumn string
	GeometryType   string
	SRID           int
	FidField       string
	BufferSize     int // pixels of overflow kept when clipping
	Simplify       bool
	Tolerance      Tolerance
	MakeValid      bool
	QueryLimit     int
	MinZoom        int
	MaxZoom        int
	Properties     []string
	Variants       []QueryVariant
}

// NormalizeVariants fills in defaulted zoom bounds on variants that did
// not declare their own, per §4.6: "variants without bounds default to
// [layer.minzoom, layer.maxzoom]".
func (l *Layer) NormalizeVariants() {
	for i := range l.Variants {
		if !l.Variants[i].HasBounds {
			l.Variants[i].MinZoom = l.MinZoom
			l.Variants[i].MaxZoom = l.MaxZoom
		}
	}
}

// VariantForZoom implements §4.6's selection rule: the last variant whose
// zoom bounds contain z wins; if none matches, the layer is skipped. A
// layer declared with no variants at all (the simple table_name? shape
// of §6) has no zoom-specific forms to select among, so it matches at
// every zoom within its own [MinZoom, MaxZoom] via a nil *QueryVariant,
// which datasource.Adapter implementations treat as "query the layer's
// own table directly".
func (l *Layer) VariantForZoom(z int) (*QueryVariant, bool) {
	if z < l.MinZoom || z > l.MaxZoom {
		return nil, false
	}
	if len(l.Variants) == 0 {
		return nil, true
	}
	var match *QueryVariant
	for i := range l.Variants {
		v := &l.Variants[i]
		if z >= v.MinZoom && z <= v.MaxZoom {
			match = v
		}
	}
	if match == nil {
		return nil, false
	}
	return match, true
}

// Tileset is a named bundle of layers sharing one output tile.
type Tileset struct {
	Name        string
	Grid        *grid.Grid
	Layers      []*Layer
	Extent      *grid.Extent // WGS84 bounding extent, optional
	Center      [3]float64   // lon, lat, start_zoom
	Attribution string
}

// LayerSelection pairs a layer with the query variant that applies at one
// zoom.
type LayerSelection struct {
	Layer   *Layer
	Variant *QueryVariant
}

// LayersForZoom resolves, for this tileset at zoom z, the ordered list of
// (layer, variant) pairs that apply (§4.6).
func (ts *Tileset) LayersForZoom(z int) []LayerSelection {
	var out []LayerSelection
	for _, l := range ts.Layers {
		if v, ok := l.VariantForZoom(z); ok {
			out = append(out, LayerSelection{Layer: l, Variant: v})
		}
	}
	return out
}

// ZoomRange computes the tileset's effective [minzoom, maxzoom] as the
// union over its layers, intersected with the grid's own range (§4.6).
func (ts *Tileset) ZoomRange() (min, max int) {
	min, max = ts.Grid.MaxZoom(), 0
	if len(ts.Layers) == 0 {
		return 0, ts.Grid.MaxZoom()
	}
	for _, l := range ts.Layers {
		if l.MinZoom < min {
			min = l.MinZoom
		}
		if l.MaxZoom > max {
			max = l.MaxZoom
		}
	}
	if min < 0 {
		min = 0
	}
	if max > ts.Grid.MaxZoom() {
		max = ts.Grid.MaxZoom()
	}
	return min, max
}

// InZoomRange reports whether z falls within the tileset's effective zoom
// range; callers use this to decide 404 (serve) vs skip (seed) per §4.6.
func (ts *Tileset) InZoomRange(z int) bool {
	min, max := ts.ZoomRange()
	return z >= min && z <= max
}
