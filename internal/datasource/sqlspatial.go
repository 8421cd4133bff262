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
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

// SQLSpatialConfig configures one database/sql-backed datasource, mirrored
// after the teacher's Database config block.
type SQLSpatialConfig struct {
	Name              string
	DatabasePath      string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	ConnectionTimeout time.Duration
}

// SQLSpatial is the sql_spatial Adapter variant: a pooled database/sql
// connection to a spatial-extension-capable SQL database (DuckDB's
// spatial extension in this build, grounded on the teacher's
// internal/data/catalog_db.go connection setup and internal/data/tiles.go
// query construction).
type SQLSpatial struct {
	cfg SQLSpatialConfig
	db  *sql.DB

	warnOnce sync.Map // per-layer query_limit warning, once per process (§4.5)
}

// NewSQLSpatial opens the pool and loads the spatial extension, following
// the teacher's dbConnect().
func NewSQLSpatial(cfg SQLSpatialConfig) (*SQLSpatial, error) {
	db, err := sql.Open("duckdb", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("datasource %s: open: %w", cfg.Name, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("datasource %s: ping: %w", cfg.Name, err)
	}
	if _, err := db.Exec("INSTALL spatial; LOAD spatial;"); err != nil {
		return nil, fmt.Errorf("datasource %s: load spatial extension: %w", cfg.Name, err)
	}
	return &SQLSpatial{cfg: cfg, db: db}, nil
}

func (s *SQLSpatial) Close() error {
	return s.db.Close()
}

// Ping exercises the pooled connection and the spatial extension,
// satisfying the optional Pinger capability the health endpoint looks
// for via a type assertion.
func (s *SQLSpatial) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("datasource %s: ping: %w", s.cfg.Name, err)
	}
	var result sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT ST_AsText(ST_Point(0, 0))").Scan(&result); err != nil {
		return fmt.Errorf("datasource %s: spatial extension check: %w", s.cfg.Name, err)
	}
	return nil
}

// DescribeLayer inspects the configured table's geometry and property
// columns, following tiles.go's enrichLayerMetadataLightweight.
func (s *SQLSpatial) DescribeLayer(ctx context.Context, layer *tileset.Layer) (LayerDescription, error) {
	var geomType string
	q := fmt.Sprintf("SELECT ST_GeometryType(%s) FROM %s LIMIT 1", layer.GeometryColumn, layer.TableName)
	if err := s.db.QueryRowContext(ctx, q).Scan(&geomType); err != nil {
		return LayerDescription{}, fmt.Errorf("describe layer %s: %w", layer.Name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT column_name, data_type FROM duckdb_columns()
		 WHERE table_name = ? AND column_name != ?`, layer.TableName, layer.GeometryColumn)
	if err != nil {
		return LayerDescription{}, fmt.Errorf("describe layer %s: columns: %w", layer.Name, err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var name, dtype string
		if err := rows.Scan(&name, &dtype); err != nil {
			return LayerDescription{}, err
		}
		props[name] = dtype
	}
	return LayerDescription{GeometryType: geomType, SourceSRID: layer.SRID, Properties: props}, nil
}

// DetectExtent computes the table's native bounds via ST_Extent, the
// basis for a tileset's WGS84 bounding extent.
func (s *SQLSpatial) DetectExtent(ctx context.Context, layer *tileset.Layer) (grid.Extent, error) {
	var minx, miny, maxx, maxy float64
	q := fmt.Sprintf(`
		SELECT ST_XMin(e), ST_YMin(e), ST_XMax(e), ST_YMax(e)
		FROM (SELECT ST_Extent(%s) as e FROM %s)`, layer.GeometryColumn, layer.TableName)
	if err := s.db.QueryRowContext(ctx, q).Scan(&minx, &miny, &maxx, &maxy); err != nil {
		return grid.Extent{}, fmt.Errorf("detect extent for %s: %w", layer.Name, err)
	}
	return grid.Extent{MinX: minx, MinY: miny, MaxX: maxx, MaxY: maxy}, nil
}

// QueryFeatures runs the layer's query (either its variant's explicit SQL
// template or a synthesized SELECT against SourceTable), substituting
// !bbox!/!zoom!/!scale_denominator!/!pixel_width!, reprojecting to the
// grid SRID when the source SRID differs, and converting each row's
// geometry (returned as GeoJSON text) plus its declared properties into
// Feature values. It is the adapter's job to perform reprojection (§4.3
// step 1) and make-valid repair (§4.3 step 4) inside the SQL itself.
func (s *SQLSpatial) QueryFeatures(ctx context.Context, req QueryRequest) ([]Feature, error) {
	layer := req.Layer
	bboxWKT := wktPolygon(req.TileBBox)

	geomExpr := layer.GeometryColumn
	if layer.SRID != req.GridSRID {
		geomExpr = fmt.Sprintf("ST_Transform(%s, 'EPSG:%d', 'EPSG:%d', always_xy := true)", layer.GeometryColumn, layer.SRID, req.GridSRID)
	}
	if layer.MakeValid {
		geomExpr = fmt.Sprintf("ST_MakeValid(%s)", geomExpr)
	}

	propCols := strings.Join(layer.Properties, ", ")
	if propCols != "" {
		propCols += ", "
	}

	from := layer.TableName
	var fromArgs []any
	if req.Variant != nil && req.Variant.SQL != "" {
		expanded, vargs := SubstituteTokens(req.Variant.SQL, TokenValues{
			BBoxWKT: bboxWKT, Zoom: req.Zoom,
			ScaleDenominator: req.ScaleDenominator, PixelWidth: req.PixelWidth,
		})
		from = fmt.Sprintf("(%s) AS src", expanded)
		fromArgs = vargs
	} else if req.Variant != nil && req.Variant.SourceTable != "" {
		from = req.Variant.SourceTable
	}

	limit := req.Limit
	if limit <= 0 {
		limit = layer.QueryLimit
	}

	query := fmt.Sprintf(
		`SELECT %sST_AsGeoJSON(%s) AS geom
		 FROM %s
		 WHERE ST_Intersects(%s, ST_GeomFromText(?))
		 LIMIT %d`,
		propCols, geomExpr, from, layer.GeometryColumn, limit+1,
	)

	args := append(fromArgs, bboxWKT)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query layer %s: %w", layer.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var features []Feature
	for rows.Next() {
		scanTargets := make([]any, len(cols))
		scanPtrs := make([]any, len(cols))
		for i := range scanTargets {
			scanPtrs[i] = &scanTargets[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return nil, err
		}

		attrs := make(map[string]any, len(cols)-1)
		var geomJSON string
		for i, c := range cols {
			if c == "geom" {
				if s, ok := scanTargets[i].(string); ok {
					geomJSON = s
				}
				continue
			}
			attrs[c] = scanTargets[i]
		}

		g, err := geojson.UnmarshalGeometry([]byte(geomJSON))
		if err != nil {
			log.Warnf("layer %s: dropping feature with unparseable geometry: %v", layer.Name, err)
			continue
		}
		features = append(features, Feature{Geometry: g.Geometry(), Attributes: attrs})

		if len(features) >= limit {
			s.warnLimitOnce(layer.Name)
			break
		}
	}
	return features, rows.Err()
}

func (s *SQLSpatial) warnLimitOnce(layerName string) {
	if _, loaded := s.warnOnce.LoadOrStore(layerName, true); !loaded {
		log.Warnf("layer %s: query_limit reached, results truncated", layerName)
	}
}

// wktPolygon renders a grid.Extent as a WKT POLYGON literal for binding
// against ST_GeomFromText.
func wktPolygon(e grid.Extent) string {
	return fmt.Sprintf("POLYGON((%g %g, %g %g, %g %g, %g %g, %g %g))",
		e.MinX, e.MinY, e.MaxX, e.MinY, e.MaxX, e.MaxY, e.MinX, e.MaxY, e.MinX, e.MinY)
}
