package datasource

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
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

// VectorFile is the vector_file Adapter variant: a GeoJSON FeatureCollection
// read once into memory, queried by linear scan with a bbox prefilter
// (§4.5: "Non-SQL datasources ... implement the same contract ... linear
// scan otherwise"). Grounded on paulmach/orb/geojson, the same decoder
// used by the MVT encoding path for SQLSpatial rows, and loosely on
// tmxgo's pattern of reading one asset file fully into memory at open time.
type VectorFile struct {
	path     string
	byLayer  map[string]*geojson.FeatureCollection
	srid     int
}

// NewVectorFile reads path once. One file may back multiple layer names;
// each configured layer's DatasourceName selects a FeatureCollection by
// convention: the whole file is treated as a single collection keyed
// under the empty-string layer name unless the caller subdivides it
// externally before seeding it into byLayer via AddCollection.
func NewVectorFile(path string, srid int) (*VectorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vector_file %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("vector_file %s: parse: %w", path, err)
	}
	return &VectorFile{path: path, srid: srid, byLayer: map[string]*geojson.FeatureCollection{"": fc}}, nil
}

// AddCollection registers an additional named FeatureCollection (e.g. one
// file per layer), keyed by the layer's DatasourceName.
func (v *VectorFile) AddCollection(name string, fc *geojson.FeatureCollection) {
	v.byLayer[name] = fc
}

func (v *VectorFile) Close() error { return nil }

func (v *VectorFile) collectionFor(layer *tileset.Layer) *geojson.FeatureCollection {
	if fc, ok := v.byLayer[layer.DatasourceName]; ok {
		return fc
	}
	return v.byLayer[""]
}

func (v *VectorFile) DescribeLayer(ctx context.Context, layer *tileset.Layer) (LayerDescription, error) {
	fc := v.collectionFor(layer)
	props := make(map[string]string)
	var geomType string
	if len(fc.Features) > 0 {
		geomType = fc.Features[0].Geometry.GeoJSONType()
		for k := range fc.Features[0].Properties {
			props[k] = "string"
		}
	}
	return LayerDescription{GeometryType: geomType, SourceSRID: v.srid, Properties: props}, nil
}

func (v *VectorFile) DetectExtent(ctx context.Context, layer *tileset.Layer) (grid.Extent, error) {
	fc := v.collectionFor(layer)
	if len(fc.Features) == 0 {
		return grid.Extent{}, nil
	}
	b := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		b = b.Union(f.Geometry.Bound())
	}
	return grid.Extent{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}, nil
}

// QueryFeatures linearly scans the collection, keeping features whose
// envelope intersects the tile bbox plus buffer; reprojection is assumed
// already done by whatever produced the GeoJSON file, matching the
// "adapter performs reprojection" contract of §4.3 step 1.
func (v *VectorFile) QueryFeatures(ctx context.Context, req QueryRequest) ([]Feature, error) {
	fc := v.collectionFor(req.Layer)
	bufferedExtent := req.TileBBox.Expand(req.PixelWidth * float64(req.Layer.BufferSize))

	limit := req.Limit
	if limit <= 0 {
		limit = req.Layer.QueryLimit
	}

	var out []Feature
	for _, f := range fc.Features {
		b := f.Geometry.Bound()
		fe := grid.Extent{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
		if !fe.Intersects(bufferedExtent) {
			continue
		}
		attrs := make(map[string]any, len(f.Properties))
		for k, val := range f.Properties {
			attrs[k] = val
		}
		out = append(out, Feature{Geometry: orb.Geometry(f.Geometry), Attributes: attrs})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
