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
	"github.com/geocore/vtserver/internal/geom"
	"google.golang.org/protobuf/encoding/protowire"
)

// Feature is one emittable record: an optional feature id (only set when
// the layer's fid_field resolves to an unsigned integer, per §4.4), an
// ordered attribute map, and its tile-pixel geometry.
type Feature struct {
	ID         *uint64
	Attributes map[string]Value
	Geometry   geom.TileGeometry
}

// Layer accumulates features for one named MVT layer, deduplicating keys
// and values as they are added (§4.4 encoder state).
type Layer struct {
	Name   string
	Extent int

	keys       []string
	keyIndex   map[string]int
	values     []Value
	valueIndex map[string]int
	features   []encodedFeature
}

type encodedFeature struct {
	id       *uint64
	tagPairs []uint32
	geomType uint32
	geometry []uint32
}

// NewLayer starts an empty encoder for a layer with the given MVT extent
// (commonly 4096).
func NewLayer(name string, extent int) *Layer {
	return &Layer{
		Name:       name,
		Extent:     extent,
		keyIndex:   make(map[string]int),
		valueIndex: make(map[string]int),
	}
}

// Empty reports whether the layer has accumulated any features. Per
// §4.4's layer-finalization rule, an empty layer is never included in the
// output tile.
func (l *Layer) Empty() bool {
	return len(l.features) == 0
}

func (l *Layer) internKey(k string) int {
	if i, ok := l.keyIndex[k]; ok {
		return i
	}
	i := len(l.keys)
	l.keys = append(l.keys, k)
	l.keyIndex[k] = i
	return i
}

func (l *Layer) internValue(v Value) int {
	ck := v.canonicalKey()
	if i, ok := l.valueIndex[ck]; ok {
		return i
	}
	i := len(l.values)
	l.values = append(l.values, v)
	l.valueIndex[ck] = i
	return i
}

// AddFeature appends one feature. Geometries that project to nothing
// emittable (empty TileGeometry) are silently skipped, matching the
// bbox-reject/degenerate-drop behavior upstream of the encoder.
func (l *Layer) AddFeature(f Feature) {
	if f.Geometry.Empty() {
		return
	}
	geomCmds := encodeGeometry(f.Geometry)
	if len(geomCmds) == 0 {
		return
	}

	// Attribute iteration order must be deterministic for encoder
	// determinism (§8 property 3); sort keys before interning.
	keys := make([]string, 0, len(f.Attributes))
	for k := range f.Attributes {
		keys = append(keys, k)
	}
	sortStrings(keys)

	tags := make([]uint32, 0, len(keys)*2)
	for _, k := range keys {
		ki := l.internKey(k)
		vi := l.internValue(f.Attributes[k])
		tags = append(tags, uint32(ki), uint32(vi))
	}

	l.features = append(l.features, encodedFeature{
		id:       f.ID,
		tagPairs: tags,
		geomType: geomTypeTag(f.Geometry.Type),
		geometry: geomCmds,
	})
}

// sortStrings is a tiny insertion sort to avoid importing sort for a
// handful of attribute keys per feature; kept local so the encoder's
// determinism doesn't depend on map iteration order anywhere.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Marshal serializes the layer as a standalone MVT Layer message (version
// 2, per §3 Encoded tile).
func (l *Layer) Marshal() []byte {
	var buf []byte

	buf = protowire.AppendTag(buf, fieldLayerVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, 2)

	buf = protowire.AppendTag(buf, fieldLayerName, protowire.BytesType)
	buf = protowire.AppendString(buf, l.Name)

	for _, f := range l.features {
		buf = appendEmbeddedMessage(buf, fieldLayerFeature, marshalFeature(f))
	}
	for _, k := range l.keys {
		buf = protowire.AppendTag(buf, fieldLayerKeys, protowire.BytesType)
		buf = protowire.AppendString(buf, k)
	}
	for _, v := range l.values {
		buf = appendEmbeddedMessage(buf, fieldLayerValues, appendValue(nil, v))
	}

	buf = protowire.AppendTag(buf, fieldLayerExtent, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(l.Extent))

	return buf
}

func marshalFeature(f encodedFeature) []byte {
	var buf []byte
	if f.id != nil {
		buf = protowire.AppendTag(buf, fieldFeatureID, protowire.VarintType)
		buf = protowire.AppendVarint(buf, *f.id)
	}
	if len(f.tagPairs) > 0 {
		buf = protowire.AppendTag(buf, fieldFeatureTags, protowire.BytesType)
		var packed []byte
		for _, t := range f.tagPairs {
			packed = protowire.AppendVarint(packed, uint64(t))
		}
		buf = protowire.AppendVarint(buf, uint64(len(packed)))
		buf = append(buf, packed...)
	}
	buf = protowire.AppendTag(buf, fieldFeatureType, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(f.geomType))

	buf = protowire.AppendTag(buf, fieldFeatureGeometry, protowire.BytesType)
	var packedGeom []byte
	for _, c := range f.geometry {
		packedGeom = protowire.AppendVarint(packedGeom, uint64(c))
	}
	buf = protowire.AppendVarint(buf, uint64(len(packedGeom)))
	buf = append(buf, packedGeom...)

	return buf
}
