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

	"github.com/paulmach/orb"

	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

// Feature is one row returned by an adapter: a geometry already in the
// target grid CRS (the adapter is responsible for reprojection, §4.3 step
// 1) and an ordered, type-converted attribute map.
type Feature struct {
	Geometry   orb.Geometry
	Attributes map[string]any
}

// LayerDescription is the result of DescribeLayer: the column/geometry
// metadata needed to validate a configured layer against its source.
type LayerDescription struct {
	GeometryType string
	SourceSRID   int
	Properties   map[string]string // property name -> source type name
}

// QueryRequest carries everything an adapter needs to run one layer query
// for one tile build.
type QueryRequest struct {
	Layer            *tileset.Layer
	Variant          *tileset.QueryVariant
	TileBBox         grid.Extent // in the tileset's grid CRS, unbuffered
	GridSRID         int
	Zoom             int
	ScaleDenominator float64
	PixelWidth       float64
	Limit            int
}

// Adapter is the capability every datasource variant implements (§9
// Design Notes: "capability set {describe_layer, query_features,
// detect_extent} with tagged variants {sql_spatial, vector_file}").
type Adapter interface {
	DescribeLayer(ctx context.Context, layer *tileset.Layer) (LayerDescription, error)
	QueryFeatures(ctx context.Context, req QueryRequest) ([]Feature, error)
	DetectExtent(ctx context.Context, layer *tileset.Layer) (grid.Extent, error)
	Close() error
}

// Kind tags which concrete Adapter variant a configuration entry selects.
type Kind string

const (
	KindSQLSpatial Kind = "sql_spatial"
	KindVectorFile Kind = "vector_file"
)
