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

// webMercatorHalfWorld is the half-extent of the Web Mercator world square
// in meters, EPSG:3857's canonical bound.
const webMercatorHalfWorld = 20037508.342789248

// WebMercator builds the standard SRID 3857 grid: a square world extent of
// +/-20037508.342789248 meters, 256x256 pixel tiles, origin top-left (the
// conventional XYZ slippy-map scheme), 23 zoom levels (0..22).
func WebMercator() *Grid {
	const levels = 23
	resolutions := make([]float64, levels)
	worldSize := webMercatorHalfWorld * 2
	for z := 0; z < levels; z++ {
		tilesAtZoom := float64(uint64(1) << uint(z))
		resolutions[z] = worldSize / tilesAtZoom / 256
	}
	g, err := NewGrid(
		"web_mercator",
		3857,
		UnitMeters,
		OriginTopLeft,
		Extent{-webMercatorHalfWorld, -webMercatorHalfWorld, webMercatorHalfWorld, webMercatorHalfWorld},
		256, 256,
		resolutions,
	)
	if err != nil {
		// The construction above is a compile-time-known-valid set of
		// parameters; a failure here means the builtin table itself is
		// broken and nothing downstream can recover.
		panic(err)
	}
	return g
}

// WGS84 builds the geographic SRID 4326 grid: world extent
// [-180,-90,180,90], two root tiles at z=0 (the world is twice as wide as
// tall, so tile (0,0) and (1,0) both exist at the root zoom), origin
// top-left.
func WGS84() *Grid {
	const levels = 23
	resolutions := make([]float64, levels)
	// At z=0 a 256x512-pixel canvas (two 256x256 tiles side by side)
	// covers the full 360x180 degree world, giving 360/512 degrees/pixel.
	for z := 0; z < levels; z++ {
		tilesAtZoom := float64(uint64(1) << uint(z))
		resolutions[z] = 360.0 / (tilesAtZoom * 2) / 256
	}
	g, err := NewGrid(
		"wgs84",
		4326,
		UnitDegrees,
		OriginTopLeft,
		Extent{-180, -90, 180, 90},
		256, 256,
		resolutions,
	)
	if err != nil {
		panic(err)
	}
	return g
}

// Builtin looks up a predefined grid by name ("web_mercator" or "wgs84").
func Builtin(name string) (*Grid, bool) {
	switch name {
	case "web_mercator":
		return WebMercator(), true
	case "wgs84":
		return WGS84(), true
	default:
		return nil, false
	}
}
