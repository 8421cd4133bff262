package grid

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
	"math"
	"testing"
)

func TestScaleInvariantMonotonic(t *testing.T) {
	g := WebMercator()
	for z := 0; z < g.MaxZoom(); z++ {
		a, err := g.PixelWidth(z)
		if err != nil {
			t.Fatal(err)
		}
		b, err := g.PixelWidth(z + 1)
		if err != nil {
			t.Fatal(err)
		}
		if !(b < a) {
			t.Errorf("pixel_width(%d)=%v is not > pixel_width(%d)=%v", z, a, z+1, b)
		}
	}
}

func TestTileExtentWorldBounds(t *testing.T) {
	g := WebMercator()
	for z := 0; z <= 4; z++ {
		nx, ny, err := g.tilesPerAxis(z)
		if err != nil {
			t.Fatal(err)
		}
		for x := 0; x < nx; x++ {
			for y := 0; y < ny; y++ {
				e, err := g.TileExtent(x, y, z)
				if err != nil {
					t.Fatalf("TileExtent(%d,%d,%d): %v", x, y, z, err)
				}
				if e.MinX < g.World.MinX-1e-6 || e.MaxX > g.World.MaxX+1e-6 {
					t.Errorf("tile (%d,%d,%d) extent %v escapes world X bounds", x, y, z, e)
				}
				if e.MinY < g.World.MinY-1e-6 || e.MaxY > g.World.MaxY+1e-6 {
					t.Errorf("tile (%d,%d,%d) extent %v escapes world Y bounds", x, y, z, e)
				}
			}
		}
	}
}

func TestTileLimitsRoundTrip(t *testing.T) {
	g := WebMercator()
	z := 6
	nx, ny, err := g.tilesPerAxis(z)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			e, err := g.TileExtent(x, y, z)
			if err != nil {
				t.Fatal(err)
			}
			lim, err := g.TileLimits(e, z)
			if err != nil {
				t.Fatal(err)
			}
			if lim.MinX > x || lim.MaxX < x || lim.MinY > y || lim.MaxY < y {
				t.Errorf("tile (%d,%d,%d) extent %v does not round-trip via TileLimits, got %+v", x, y, z, e, lim)
			}
		}
	}
}

func TestScaleDenominator(t *testing.T) {
	g := WebMercator()
	pw, _ := g.PixelWidth(0)
	sd, err := g.ScaleDenominator(0)
	if err != nil {
		t.Fatal(err)
	}
	want := pw * 1.0 * (1 / 0.00028)
	if math.Abs(sd-want) > 1e-6 {
		t.Errorf("ScaleDenominator(0) = %v, want %v", sd, want)
	}
}

func TestZoomOutOfRange(t *testing.T) {
	g := WebMercator()
	if _, err := g.PixelWidth(g.MaxZoom() + 1); err == nil {
		t.Error("expected error for zoom past max_zoom")
	}
}

func TestTileOutOfRange(t *testing.T) {
	g := WebMercator()
	if _, err := g.TileExtent(-1, 0, 0); err == nil {
		t.Error("expected error for negative tile index")
	}
	if _, err := g.TileExtent(0, 0, 23); err == nil {
		t.Error("expected error for zoom past max_zoom")
	}
}

func TestXYZTMSFlipIsInvolution(t *testing.T) {
	g := WebMercator()
	z := 5
	for y := 0; y < 1<<uint(z); y++ {
		tms, err := g.XYZToTMS(y, z)
		if err != nil {
			t.Fatal(err)
		}
		back, err := g.TMSToXYZ(tms, z)
		if err != nil {
			t.Fatal(err)
		}
		if back != y {
			t.Errorf("flip(flip(%d)) = %d, want %d", y, back, y)
		}
	}
}

func TestWGS84TwoRootTiles(t *testing.T) {
	g := WGS84()
	nx, ny, err := g.tilesPerAxis(0)
	if err != nil {
		t.Fatal(err)
	}
	if nx != 2 || ny != 1 {
		t.Errorf("wgs84 root zoom should have 2x1 tiles, got %dx%d", nx, ny)
	}
}

func TestUserGridRejectsNonDecreasingResolutions(t *testing.T) {
	_, err := NewGrid("bad", 2056, UnitMeters, OriginTopLeft, Extent{0, 0, 100, 100}, 256, 256, []float64{10, 10})
	if err == nil {
		t.Error("expected error for non-decreasing resolutions")
	}
}

func TestUserGridSwissExample(t *testing.T) {
	// Grounded in spec scenario E5: EPSG:2056, extent
	// {2420000,1030000,2900000,1350000}.
	world := Extent{2420000, 1030000, 2900000, 1350000}
	resolutions := make([]float64, 16)
	resolutions[0] = (world.MaxX - world.MinX) / 256
	for z := 1; z < len(resolutions); z++ {
		resolutions[z] = resolutions[z-1] / 2
	}
	g, err := NewGrid("lv95", 2056, UnitMeters, OriginTopLeft, world, 256, 256, resolutions)
	if err != nil {
		t.Fatal(err)
	}
	e, err := g.TileExtent(0, 0, 15)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(e.MinX-2420000) > 1 || math.Abs(e.MaxY-1350000) > 1 {
		t.Errorf("top-left tile at z=15 has unexpected extent: %+v", e)
	}
}
