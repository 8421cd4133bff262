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

import (
	"bytes"
	"testing"

	"github.com/geocore/vtserver/internal/geom"
)

func pointFeature(x, y int32) geom.TileGeometry {
	return geom.TileGeometry{Type: geom.TypePoint, Paths: []geom.TilePath{{{X: x, Y: y}}}}
}

func TestEncoderDeterminism(t *testing.T) {
	build := func() []byte {
		l := NewLayer("places", 4096)
		l.AddFeature(Feature{
			Attributes: map[string]Value{"name": StringValue("Alpha"), "pop": IntValue(10)},
			Geometry:   pointFeature(100, 200),
		})
		return l.Marshal()
	}
	a := build()
	b := build()
	if !bytes.Equal(a, b) {
		t.Error("encoding the same feature twice produced different bytes")
	}
}

func TestEmptyLayerElided(t *testing.T) {
	l := NewLayer("empty", 4096)
	out := Marshal([]*Layer{l})
	if len(out) != 0 {
		t.Errorf("expected zero-length tile for a layer with no features, got %d bytes", len(out))
	}
}

func TestSingleLayerNonEmpty(t *testing.T) {
	l := NewLayer("places", 4096)
	l.AddFeature(Feature{Geometry: pointFeature(1, 1)})
	out := Marshal([]*Layer{l})
	if len(out) == 0 {
		t.Error("expected non-empty tile for a layer with one feature")
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 4095, -4095, 2047}
	for _, v := range cases {
		z := zigzag(v)
		// MVT zig-zag decode: (z >> 1) ^ -(z & 1)
		decoded := int32(z>>1) ^ -int32(z&1)
		if decoded != v {
			t.Errorf("zigzag round trip failed for %d: got %d", v, decoded)
		}
	}
}

func TestCommandIntegerPacking(t *testing.T) {
	c := commandInteger(cmdMoveTo, 1)
	if c != (1&0x7)|(1<<3) {
		t.Errorf("unexpected MoveTo(1) command integer: %d", c)
	}
	c = commandInteger(cmdLineTo, 3)
	if c != (2&0x7)|(3<<3) {
		t.Errorf("unexpected LineTo(3) command integer: %d", c)
	}
}

// decodeCommands is a minimal reader mirroring encodeGeometry's cursor
// rules, used only to assert the delta-encoding inverse property.
func decodeCommands(cmds []uint32) (finalX, finalY int32) {
	var i int
	for i < len(cmds) {
		cmdInt := cmds[i]
		id := cmdInt & 0x7
		count := cmdInt >> 3
		i++
		if id == cmdClosePath {
			continue
		}
		for c := uint32(0); c < count; c++ {
			dx := cmds[i]
			dy := cmds[i+1]
			i += 2
			ddx := int32(dx>>1) ^ -int32(dx&1)
			ddy := int32(dy>>1) ^ -int32(dy&1)
			finalX += ddx
			finalY += ddy
		}
	}
	return finalX, finalY
}

func TestDeltaEncodingInverse(t *testing.T) {
	path := geom.TilePath{{X: 10, Y: 10}, {X: 20, Y: 15}, {X: 5, Y: 40}}
	g := geom.TileGeometry{Type: geom.TypeLineString, Paths: []geom.TilePath{path}}
	cmds := encodeGeometry(g)
	fx, fy := decodeCommands(cmds)
	last := path[len(path)-1]
	if fx != last.X || fy != last.Y {
		t.Errorf("cursor after decode = (%d,%d), want (%d,%d)", fx, fy, last.X, last.Y)
	}
}

func TestValueDedupByKindAndValue(t *testing.T) {
	l := NewLayer("t", 4096)
	l.AddFeature(Feature{Attributes: map[string]Value{"a": IntValue(1)}, Geometry: pointFeature(0, 0)})
	l.AddFeature(Feature{Attributes: map[string]Value{"a": IntValue(1)}, Geometry: pointFeature(1, 1)})
	l.AddFeature(Feature{Attributes: map[string]Value{"a": DoubleValue(1.0)}, Geometry: pointFeature(2, 2)})
	if len(l.values) != 2 {
		t.Errorf("expected Int(1) and Double(1.0) to be distinct dictionary entries, got %d values", len(l.values))
	}
}

func TestFeatureIDEmittedWhenSet(t *testing.T) {
	l := NewLayer("t", 4096)
	id := uint64(42)
	l.AddFeature(Feature{ID: &id, Geometry: pointFeature(0, 0)})
	if l.features[0].id == nil || *l.features[0].id != 42 {
		t.Error("expected feature id 42 to be retained")
	}
}

func TestPolygonRingCommandShape(t *testing.T) {
	// A closed square ring: 4 distinct corners + repeated first point = 5
	// stored points, matching "MoveTo(1) + LineTo(n-2) + ClosePath".
	ring := geom.TilePath{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}
	g := geom.TileGeometry{Type: geom.TypePolygon, Paths: []geom.TilePath{ring}, RingExterior: []bool{true}}
	cmds := encodeGeometry(g)
	if commandInteger(cmdMoveTo, 1) != cmds[0] {
		t.Fatalf("expected first command to be MoveTo(1), got %d", cmds[0])
	}
	lineToIdx := 3 // MoveTo + 2 params
	wantLineTo := commandInteger(cmdLineTo, uint32(len(ring)-2))
	if cmds[lineToIdx] != wantLineTo {
		t.Errorf("expected LineTo(%d) at index %d, got %d", len(ring)-2, lineToIdx, cmds[lineToIdx])
	}
	if cmds[len(cmds)-1] != commandInteger(cmdClosePath, 1) {
		t.Error("expected ring to end with ClosePath")
	}
}
