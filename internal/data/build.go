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
	"fmt"
	"time"

	"github.com/geocore/vtserver/internal/conf"
	"github.com/geocore/vtserver/internal/datasource"
	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

// BuildGrids instantiates every configured grid, resolving Builtin
// shortcuts first.
func BuildGrids(cfgs map[string]conf.GridConfig) (map[string]*grid.Grid, error) {
	out := make(map[string]*grid.Grid, len(cfgs))
	for name, c := range cfgs {
		if c.Builtin != "" {
			g, ok := grid.Builtin(c.Builtin)
			if !ok {
				return nil, fmt.Errorf("grid %s: unknown builtin %q", name, c.Builtin)
			}
			out[name] = g
			continue
		}
		unit := grid.Unit(c.Unit)
		if unit == "" {
			unit = grid.UnitMeters
		}
		origin := grid.Origin(c.Origin)
		if origin == "" {
			origin = grid.OriginTopLeft
		}
		g, err := grid.NewGrid(name, c.SRID, unit, origin,
			grid.Extent{MinX: c.MinX, MinY: c.MinY, MaxX: c.MaxX, MaxY: c.MaxY},
			c.TileWidth, c.TileHeight, c.Resolutions)
		if err != nil {
			return nil, err
		}
		out[name] = g
	}
	return out, nil
}

// BuildDatasources opens every configured datasource adapter.
func BuildDatasources(cfgs map[string]conf.DatasourceConfig) (map[string]datasource.Adapter, error) {
	out := make(map[string]datasource.Adapter, len(cfgs))
	for name, c := range cfgs {
		switch datasource.Kind(c.Kind) {
		case datasource.KindSQLSpatial:
			ds, err := datasource.NewSQLSpatial(datasource.SQLSpatialConfig{
				Name:              name,
				DatabasePath:      c.Path,
				MaxOpenConns:      c.MaxOpenConns,
				MaxIdleConns:      c.MaxIdleConns,
				ConnMaxLifetime:   time.Duration(c.ConnMaxLifetimeS) * time.Second,
				ConnMaxIdleTime:   time.Duration(c.ConnMaxIdleTimeS) * time.Second,
			})
			if err != nil {
				return nil, fmt.Errorf("datasource %s: %w", name, err)
			}
			out[name] = ds
		case datasource.KindVectorFile:
			ds, err := datasource.NewVectorFile(c.Path, c.SRID)
			if err != nil {
				return nil, fmt.Errorf("datasource %s: %w", name, err)
			}
			out[name] = ds
		default:
			return nil, fmt.Errorf("datasource %s: unknown kind %q", name, c.Kind)
		}
	}
	return out, nil
}

// BuildTilesets assembles the configured tilesets against already-built
// grids, resolving each layer's query variants.
func BuildTilesets(cfgs map[string]conf.TilesetConfig, grids map[string]*grid.Grid) (map[string]*tileset.Tileset, error) {
	out := make(map[string]*tileset.Tileset, len(cfgs))
	for name, c := range cfgs {
		g, ok := grids[c.Grid]
		if !ok {
			return nil, fmt.Errorf("tileset %s: unknown grid %q", name, c.Grid)
		}

		ts := &tileset.Tileset{Name: name, Grid: g, Center: c.Center, Attribution: c.Attribution}
		if len(c.Bounds) == 4 {
			ts.Extent = &grid.Extent{MinX: c.Bounds[0], MinY: c.Bounds[1], MaxX: c.Bounds[2], MaxY: c.Bounds[3]}
		}

		for _, lc := range c.Layers {
			table := lc.Table
			if table == "" {
				table = lc.Name
			}
			layer := &tileset.Layer{
				Name:           lc.Name,
				DatasourceName: lc.Datasource,
				TableName:      table,
				GeometryColumn: lc.GeometryColumn,
				GeometryType:   lc.GeometryType,
				SRID:           lc.SRID,
				FidField:       lc.FidField,
				BufferSize:     lc.BufferSize,
				Simplify:       lc.Simplify,
				Tolerance:      tileset.Tolerance{Scalar: lc.Tolerance, ByZoom: lc.ToleranceByZoom},
				MakeValid:      lc.MakeValid,
				QueryLimit:     lc.QueryLimit,
				MinZoom:        lc.MinZoom,
				MaxZoom:        lc.MaxZoom,
				Properties:     lc.Properties,
			}
			for _, vc := range lc.Variants {
				layer.Variants = append(layer.Variants, tileset.QueryVariant{
					MinZoom: vc.MinZoom, MaxZoom: vc.MaxZoom, HasBounds: vc.HasBounds,
					SourceTable: vc.SourceTable, SQL: vc.SQL,
				})
			}
			layer.NormalizeVariants()
			ts.Layers = append(ts.Layers, layer)
		}
		out[name] = ts
	}
	return out, nil
}

// BuildCatalog wires grids, datasources and tilesets from the effective
// Configuration into a ready-to-serve Catalog.
func BuildCatalog(cfg conf.Config) (*Catalog, error) {
	grids, err := BuildGrids(cfg.Grids)
	if err != nil {
		return nil, err
	}
	datasources, err := BuildDatasources(cfg.Datasources)
	if err != nil {
		return nil, err
	}
	tilesets, err := BuildTilesets(cfg.Tilesets, grids)
	if err != nil {
		return nil, err
	}
	return NewCatalog(datasources, tilesets), nil
}
