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
	"testing"

	"github.com/geocore/vtserver/internal/conf"
)

func TestBuildTilesetsSelectsSimpleLayerWithNoVariants(t *testing.T) {
	grids, err := BuildGrids(map[string]conf.GridConfig{"wm": {Builtin: "web_mercator"}})
	if err != nil {
		t.Fatalf("BuildGrids: %v", err)
	}

	cfgs := map[string]conf.TilesetConfig{
		"test": {
			Grid: "wm",
			Layers: []conf.LayerConfig{
				{Name: "buildings", Datasource: "main", GeometryColumn: "geom", MinZoom: 0, MaxZoom: 14},
			},
		},
	}

	tilesets, err := BuildTilesets(cfgs, grids)
	if err != nil {
		t.Fatalf("BuildTilesets: %v", err)
	}

	ts := tilesets["test"]
	layer := ts.Layers[0]
	if layer.TableName != "buildings" {
		t.Errorf("expected TableName to default to the layer name, got %q", layer.TableName)
	}
	if len(layer.Variants) != 0 {
		t.Fatalf("expected no variants for the simple table-reference shape, got %d", len(layer.Variants))
	}

	sel := ts.LayersForZoom(7)
	if len(sel) != 1 {
		t.Fatalf("expected the variant-less layer to be selected at z=7, got %d selections", len(sel))
	}
	if sel[0].Variant != nil {
		t.Errorf("expected a nil Variant for a layer with no declared variants, got %+v", sel[0].Variant)
	}
}

func TestBuildTilesetsLayerTableOverridesName(t *testing.T) {
	grids, err := BuildGrids(map[string]conf.GridConfig{"wm": {Builtin: "web_mercator"}})
	if err != nil {
		t.Fatalf("BuildGrids: %v", err)
	}

	cfgs := map[string]conf.TilesetConfig{
		"test": {
			Grid: "wm",
			Layers: []conf.LayerConfig{
				{Name: "roads", Table: "roads_v2", Datasource: "main", GeometryColumn: "geom", MaxZoom: 14},
			},
		},
	}

	tilesets, err := BuildTilesets(cfgs, grids)
	if err != nil {
		t.Fatalf("BuildTilesets: %v", err)
	}

	layer := tilesets["test"].Layers[0]
	if layer.TableName != "roads_v2" {
		t.Errorf("expected Table config to override the default table name, got %q", layer.TableName)
	}
	if layer.DatasourceName != "main" {
		t.Errorf("expected DatasourceName to stay the routing key, got %q", layer.DatasourceName)
	}
}
