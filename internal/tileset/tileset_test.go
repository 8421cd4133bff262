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
	"testing"

	"github.com/geocore/vtserver/internal/grid"
)

func TestLastMatchingVariantWins(t *testing.T) {
	l := &Layer{
		MinZoom: 0, MaxZoom: 14,
		Variants: []QueryVariant{
			{HasBounds: true, MinZoom: 0, MaxZoom: 10, SourceTable: "simplified"},
			{HasBounds: true, MinZoom: 8, MaxZoom: 14, SourceTable: "detailed"},
		},
	}
	v, ok := l.VariantForZoom(9)
	if !ok {
		t.Fatal("expected a match at z=9")
	}
	if v.SourceTable != "detailed" {
		t.Errorf("expected the later-declared overlapping variant to win, got %q", v.SourceTable)
	}
}

func TestNoVariantMatchSkipsLayer(t *testing.T) {
	l := &Layer{MinZoom: 0, MaxZoom: 14, Variants: []QueryVariant{
		{HasBounds: true, MinZoom: 0, MaxZoom: 5, SourceTable: "only_low_zoom"},
	}}
	l.NormalizeVariants()
	if _, ok := l.VariantForZoom(10); ok {
		t.Error("expected no variant to match z=10")
	}
}

func TestVariantForZoomWithNoVariantsUsesBaseLayer(t *testing.T) {
	l := &Layer{MinZoom: 0, MaxZoom: 14}
	v, ok := l.VariantForZoom(9)
	if !ok {
		t.Fatal("expected a variant-less layer to match within its own zoom range")
	}
	if v != nil {
		t.Errorf("expected a nil *QueryVariant for the base-layer case, got %+v", v)
	}
	if _, ok := l.VariantForZoom(15); ok {
		t.Error("expected a variant-less layer to still respect its own zoom bounds")
	}
}

func TestVariantDefaultsToLayerBounds(t *testing.T) {
	l := &Layer{MinZoom: 2, MaxZoom: 12, Variants: []QueryVariant{{SourceTable: "t"}}}
	l.NormalizeVariants()
	if l.Variants[0].MinZoom != 2 || l.Variants[0].MaxZoom != 12 {
		t.Errorf("expected unbounded variant to inherit layer bounds, got [%d,%d]", l.Variants[0].MinZoom, l.Variants[0].MaxZoom)
	}
}

func TestToleranceZoomKeyed(t *testing.T) {
	tol := Tolerance{Scalar: 1.5, ByZoom: map[int]float64{5: 10}}
	if tol.ForZoom(5) != 10 {
		t.Error("expected zoom-keyed tolerance to override scalar")
	}
	if tol.ForZoom(6) != 1.5 {
		t.Error("expected scalar fallback for an unlisted zoom")
	}
}

func TestTilesetZoomRangeUnion(t *testing.T) {
	ts := &Tileset{
		Grid: grid.WebMercator(),
		Layers: []*Layer{
			{MinZoom: 2, MaxZoom: 8},
			{MinZoom: 0, MaxZoom: 14},
		},
	}
	min, max := ts.ZoomRange()
	if min != 0 || max != 14 {
		t.Errorf("expected union [0,14], got [%d,%d]", min, max)
	}
}

func TestOutOfZoomRangeRejected(t *testing.T) {
	ts := &Tileset{Grid: grid.WebMercator(), Layers: []*Layer{{MinZoom: 0, MaxZoom: 14}}}
	if ts.InZoomRange(20) {
		t.Error("expected z=20 to be outside the tileset's zoom range")
	}
}
