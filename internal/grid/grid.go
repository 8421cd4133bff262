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
	"errors"
	"fmt"
)

// Unit is the linear unit a Grid's world extent and resolutions are
// expressed in.
type Unit string

const (
	UnitMeters  Unit = "meters"
	UnitDegrees Unit = "degrees"
	UnitFeet    Unit = "feet"
)

// unitToMeter converts one unit of the grid's Unit to meters, used by
// ScaleDenominator.
func (u Unit) unitToMeter() float64 {
	switch u {
	case UnitDegrees:
		// WGS84 equatorial degree-to-meter, the OGC SLD convention.
		return 111319.4908
	case UnitFeet:
		return 0.3048
	default:
		return 1.0
	}
}

// Origin names which corner of the world extent tile (0,0) sits at.
type Origin string

const (
	OriginTopLeft    Origin = "top-left"
	OriginBottomLeft Origin = "bottom-left"
)

// Extent is a bounding box in a named CRS.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Valid reports whether the extent's bounds are not inverted.
func (e Extent) Valid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// Intersects reports whether e and o overlap (including touching edges).
func (e Extent) Intersects(o Extent) bool {
	return e.MinX <= o.MaxX && e.MaxX >= o.MinX && e.MinY <= o.MaxY && e.MaxY >= o.MinY
}

// Expand grows e by buf units on every side.
func (e Extent) Expand(buf float64) Extent {
	return Extent{e.MinX - buf, e.MinY - buf, e.MaxX + buf, e.MaxY + buf}
}

// TileLimits is the inclusive range of tile indices covering an Extent at
// one zoom level.
type TileLimits struct {
	MinX, MaxX, MinY, MaxY int
}

var (
	// ErrZoomOutOfRange is returned when a requested zoom has no resolution
	// entry in the grid.
	ErrZoomOutOfRange = errors.New("grid: zoom out of range")
	// ErrTileOutOfRange is returned when a tile index falls outside the
	// grid's quadtree bounds at its zoom.
	ErrTileOutOfRange = errors.New("grid: tile index out of range")
)

// Grid is an immutable tiling scheme over a coordinate reference system:
// a world extent, a per-zoom resolution table (grid units per pixel), and
// the pixel dimensions of one tile.
type Grid struct {
	Name        string
	SRID        int
	Unit        Unit
	Origin      Origin
	World       Extent
	TileWidth   int
	TileHeight  int
	Resolutions []float64 // index = zoom level
}

// NewGrid validates and constructs a Grid. Resolutions must be strictly
// decreasing, matching the invariant in the data model: "index in the list
// is the zoom level; pixel size at zoom z is resolutions[z]".
func NewGrid(name string, srid int, unit Unit, origin Origin, world Extent, tileWidth, tileHeight int, resolutions []float64) (*Grid, error) {
	if !world.Valid() {
		return nil, fmt.Errorf("grid %s: invalid world extent", name)
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("grid %s: tile dimensions must be positive", name)
	}
	if len(resolutions) == 0 {
		return nil, fmt.Errorf("grid %s: at least one resolution is required", name)
	}
	for i := 1; i < len(resolutions); i++ {
		if !(resolutions[i] < resolutions[i-1]) {
			return nil, fmt.Errorf("grid %s: resolutions must be strictly decreasing at index %d", name, i)
		}
	}
	cp := make([]float64, len(resolutions))
	copy(cp, resolutions)
	return &Grid{
		Name:        name,
		SRID:        srid,
		Unit:        unit,
		Origin:      origin,
		World:       world,
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Resolutions: cp,
	}, nil
}

// MaxZoom is the highest zoom level with a defined resolution.
func (g *Grid) MaxZoom() int {
	return len(g.Resolutions) - 1
}

// PixelWidth returns the grid units covered by one pixel at zoom z.
func (g *Grid) PixelWidth(z int) (float64, error) {
	if z < 0 || z > g.MaxZoom() {
		return 0, ErrZoomOutOfRange
	}
	return g.Resolutions[z], nil
}

// ScaleDenominator is the OGC SLD map-scale value at zoom z:
// pixel_width(z) * unit_to_meter * (1/0.00028).
func (g *Grid) ScaleDenominator(z int) (float64, error) {
	pw, err := g.PixelWidth(z)
	if err != nil {
		return 0, err
	}
	return pw * g.Unit.unitToMeter() * (1 / 0.00028), nil
}

// tilesPerAxis is the number of tiles spanning the world extent's X and Y
// dimensions at zoom z.
func (g *Grid) tilesPerAxis(z int) (nx, ny int, err error) {
	pw, err := g.PixelWidth(z)
	if err != nil {
		return 0, 0, err
	}
	worldW := g.World.MaxX - g.World.MinX
	worldH := g.World.MaxY - g.World.MinY
	nx = int((worldW/pw + float64(g.TileWidth)/2) / float64(g.TileWidth))
	ny = int((worldH/pw + float64(g.TileHeight)/2) / float64(g.TileHeight))
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	return nx, ny, nil
}

// TileExtent returns the bounding box of tile (x, y, z), in grid CRS units,
// clamped to the world extent. x and y are given in the XYZ HTTP scheme
// (origin top-left, y ascending downward) regardless of the grid's own
// Origin; TileExtent performs the bottom-left flip internally for grids
// whose Origin is bottom-left so that callers never need to know which
// convention a particular grid was authored in.
func (g *Grid) TileExtent(x, y, z int) (Extent, error) {
	pw, err := g.PixelWidth(z)
	if err != nil {
		return Extent{}, err
	}
	nx, ny, err := g.tilesPerAxis(z)
	if err != nil {
		return Extent{}, err
	}
	if x < 0 || x >= nx || y < 0 || y >= ny {
		return Extent{}, ErrTileOutOfRange
	}
	tileW := float64(g.TileWidth) * pw
	tileH := float64(g.TileHeight) * pw

	e := Extent{
		MinX: g.World.MinX + float64(x)*tileW,
		MaxX: g.World.MinX + float64(x+1)*tileW,
	}
	if g.Origin == OriginBottomLeft {
		// Rows are anchored at the world's southern (MinY) edge: flip the
		// XYZ row into the grid's own bottom-up (TMS) row.
		row := ny - 1 - y
		e.MinY = g.World.MinY + float64(row)*tileH
		e.MaxY = g.World.MinY + float64(row+1)*tileH
	} else {
		// Rows are anchored at the world's northern (MaxY) edge.
		e.MaxY = g.World.MaxY - float64(y)*tileH
		e.MinY = g.World.MaxY - float64(y+1)*tileH
	}
	if e.MaxX > g.World.MaxX {
		e.MaxX = g.World.MaxX
	}
	if e.MaxY > g.World.MaxY {
		e.MaxY = g.World.MaxY
	}
	if e.MinY < g.World.MinY {
		e.MinY = g.World.MinY
	}
	return e, nil
}

// TileLimits returns the inclusive XYZ tile index range covering extent at
// zoom z.
func (g *Grid) TileLimits(extent Extent, z int) (TileLimits, error) {
	pw, err := g.PixelWidth(z)
	if err != nil {
		return TileLimits{}, err
	}
	nx, ny, err := g.tilesPerAxis(z)
	if err != nil {
		return TileLimits{}, err
	}
	tileW := float64(g.TileWidth) * pw
	tileH := float64(g.TileHeight) * pw

	minX := int((extent.MinX - g.World.MinX) / tileW)
	maxX := int((extent.MaxX - g.World.MinX) / tileW)
	// Rows are counted from the edge TileExtent anchors them at: MaxY for
	// top-left grids, MinY for bottom-left grids.
	minRow := int((g.World.MaxY - extent.MaxY) / tileH)
	maxRow := int((g.World.MaxY - extent.MinY) / tileH)
	if g.Origin == OriginBottomLeft {
		minRow = int((extent.MinY - g.World.MinY) / tileH)
		maxRow = int((extent.MaxY - g.World.MinY) / tileH)
	}

	if minX < 0 {
		minX = 0
	}
	if maxX > nx-1 {
		maxX = nx - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow > ny-1 {
		maxRow = ny - 1
	}

	minY, maxY := minRow, maxRow
	if g.Origin == OriginBottomLeft {
		minY, maxY = ny-1-maxRow, ny-1-minRow
	}
	return TileLimits{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}, nil
}

// XYZToTMS flips a y index between the XYZ scheme (origin top-left, y
// ascending downward) and the TMS scheme (origin bottom-left, y ascending
// upward) at zoom z: tms_y = tiles_per_column(z) - 1 - xyz_y. The formula
// is its own inverse, so TMSToXYZ is the same computation.
func (g *Grid) XYZToTMS(y, z int) (int, error) {
	_, ny, err := g.tilesPerAxis(z)
	if err != nil {
		return 0, err
	}
	return ny - 1 - y, nil
}

// TMSToXYZ is XYZToTMS's inverse; the flip formula is its own inverse.
func (g *Grid) TMSToXYZ(y, z int) (int, error) {
	return g.XYZToTMS(y, z)
}
