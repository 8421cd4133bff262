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

import "fmt"

// TileJSON is the TileJSON 3.0.0 document served per tileset (§5
// "Supplemented features"), keeping the teacher's struct shape.
type TileJSON struct {
	TileJSON     string        `json:"tilejson"`
	Name         string        `json:"name,omitempty"`
	Description  string        `json:"description,omitempty"`
	Version      string        `json:"version,omitempty"`
	Scheme       string        `json:"scheme,omitempty"`
	Tiles        []string      `json:"tiles"`
	MinZoom      int           `json:"minzoom"`
	MaxZoom      int           `json:"maxzoom"`
	Bounds       []float64     `json:"bounds,omitempty"`
	Center       []float64     `json:"center,omitempty"`
	Attribution  string        `json:"attribution,omitempty"`
	VectorLayers []VectorLayer `json:"vector_layers,omitempty"`
}

// VectorLayer describes one layer within a TileJSON document.
type VectorLayer struct {
	ID          string            `json:"id"`
	Description string            `json:"description,omitempty"`
	MinZoom     int               `json:"minzoom,omitempty"`
	MaxZoom     int               `json:"maxzoom,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// TilesetSummary is the shape returned by the /tilesets listing
// endpoint: just enough to link into a tileset's TileJSON.
type TilesetSummary struct {
	Name    string `json:"name"`
	MinZoom int    `json:"minzoom"`
	MaxZoom int    `json:"maxzoom"`
}

// TileJSONFor builds the TileJSON document for one configured tileset.
func (c *Catalog) TileJSONFor(name, baseURL string) (*TileJSON, error) {
	ts, err := c.Tileset(name)
	if err != nil {
		return nil, err
	}
	min, max := ts.ZoomRange()

	tj := &TileJSON{
		TileJSON:    "3.0.0",
		Name:        ts.Name,
		Scheme:      "xyz",
		Tiles:       []string{fmt.Sprintf("%s/tilesets/%s/{z}/{x}/{y}.pbf", baseURL, ts.Name)},
		MinZoom:     min,
		MaxZoom:     max,
		Attribution: ts.Attribution,
	}
	if ts.Extent != nil {
		tj.Bounds = []float64{ts.Extent.MinX, ts.Extent.MinY, ts.Extent.MaxX, ts.Extent.MaxY}
	}
	if ts.Center != [3]float64{} {
		tj.Center = []float64{ts.Center[0], ts.Center[1], ts.Center[2]}
	}

	for _, l := range ts.Layers {
		fields := make(map[string]string, len(l.Properties))
		for _, p := range l.Properties {
			fields[p] = "string"
		}
		tj.VectorLayers = append(tj.VectorLayers, VectorLayer{
			ID:      l.Name,
			MinZoom: l.MinZoom,
			MaxZoom: l.MaxZoom,
			Fields:  fields,
		})
	}
	return tj, nil
}

// Summaries lists every configured tileset for the /tilesets endpoint.
func (c *Catalog) Summaries() []TilesetSummary {
	tilesets := c.Tilesets()
	out := make([]TilesetSummary, 0, len(tilesets))
	for _, ts := range tilesets {
		min, max := ts.ZoomRange()
		out = append(out, TilesetSummary{Name: ts.Name, MinZoom: min, MaxZoom: max})
	}
	return out
}
