package mvt

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

import "github.com/geocore/vtserver/internal/geom"

// Command ids, per §4.4.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// commandInteger packs a command id and repeat count into one u32:
// (id & 0x7) | (count << 3).
func commandInteger(id, count uint32) uint32 {
	return (id & 0x7) | (count << 3)
}

// zigzag encodes a signed delta as the MVT parameter integer.
func zigzag(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// encodeGeometry turns a tile-pixel geometry into the MVT command stream
// (§4.4). The cursor starts at (0,0) for the feature and persists across
// every path/ring emitted for that feature; ClosePath does not move it.
func encodeGeometry(g geom.TileGeometry) []uint32 {
	var cursor geom.TilePoint
	var out []uint32

	emitMoveAndLines := func(path geom.TilePath, lineCount int) {
		out = append(out, commandInteger(cmdMoveTo, 1))
		dx := path[0].X - cursor.X
		dy := path[0].Y - cursor.Y
		out = append(out, zigzag(dx), zigzag(dy))
		cursor = path[0]
		if lineCount <= 0 {
			return
		}
		out = append(out, commandInteger(cmdLineTo, uint32(lineCount)))
		for i := 1; i <= lineCount; i++ {
			dx := path[i].X - cursor.X
			dy := path[i].Y - cursor.Y
			out = append(out, zigzag(dx), zigzag(dy))
			cursor = path[i]
		}
	}

	switch g.Type {
	case geom.TypePoint:
		if len(g.Paths) == 0 {
			return nil
		}
		path := g.Paths[0]
		out = append(out, commandInteger(cmdMoveTo, uint32(len(path))))
		for _, p := range path {
			dx := p.X - cursor.X
			dy := p.Y - cursor.Y
			out = append(out, zigzag(dx), zigzag(dy))
			cursor = p
		}

	case geom.TypeLineString:
		for _, path := range g.Paths {
			if len(path) < 2 {
				continue
			}
			emitMoveAndLines(path, len(path)-1)
		}

	case geom.TypePolygon:
		for _, ring := range g.Paths {
			// ring is stored closed (first point repeated as last); emit
			// n-2 LineTo vertices and drop the repeated closing point.
			if len(ring) < 4 {
				continue
			}
			emitMoveAndLines(ring, len(ring)-2)
			out = append(out, commandInteger(cmdClosePath, 1))
		}
	}
	return out
}

// geomTypeTag maps a geom.TileType to the MVT Tile.GeomType enum value.
func geomTypeTag(t geom.TileType) uint32 {
	switch t {
	case geom.TypePoint:
		return 1
	case geom.TypeLineString:
		return 2
	case geom.TypePolygon:
		return 3
	default:
		return 0
	}
}
