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
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from the Mapbox vector_tile.proto schema (MVT spec 2.1).
const (
	fieldTileLayers = 3

	fieldLayerName    = 1
	fieldLayerFeature = 2
	fieldLayerKeys    = 3
	fieldLayerValues  = 4
	fieldLayerExtent  = 5
	fieldLayerVersion = 15

	fieldFeatureID       = 1
	fieldFeatureTags     = 2
	fieldFeatureType     = 3
	fieldFeatureGeometry = 4

	fieldValueString = 1
	fieldValueFloat  = 2
	fieldValueDouble = 3
	fieldValueInt    = 4
	fieldValueUint   = 5
	fieldValueSint   = 6
	fieldValueBool   = 7
)

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindString:
		buf = protowire.AppendTag(buf, fieldValueString, protowire.BytesType)
		buf = protowire.AppendString(buf, v.Str)
	case KindFloat:
		buf = protowire.AppendTag(buf, fieldValueFloat, protowire.Fixed32Type)
		buf = protowire.AppendFixed32(buf, math.Float32bits(v.Float))
	case KindDouble:
		buf = protowire.AppendTag(buf, fieldValueDouble, protowire.Fixed64Type)
		buf = protowire.AppendFixed64(buf, math.Float64bits(v.Double))
	case KindInt:
		buf = protowire.AppendTag(buf, fieldValueInt, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(v.Int))
	case KindUint:
		buf = protowire.AppendTag(buf, fieldValueUint, protowire.VarintType)
		buf = protowire.AppendVarint(buf, v.Uint)
	case KindSint:
		buf = protowire.AppendTag(buf, fieldValueSint, protowire.VarintType)
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(v.Sint))
	case KindBool:
		buf = protowire.AppendTag(buf, fieldValueBool, protowire.VarintType)
		buf = protowire.AppendVarint(buf, boolVarint(v.Bool))
	}
	return buf
}

func boolVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// appendEmbeddedMessage writes field tag, varint length, then content, the
// standard length-delimited embedding used for Tile.layers, Layer.features
// and Layer.values.
func appendEmbeddedMessage(buf []byte, fieldNum int32, content []byte) []byte {
	buf = protowire.AppendTag(buf, protowire.Number(fieldNum), protowire.BytesType)
	buf = protowire.AppendVarint(buf, uint64(len(content)))
	buf = append(buf, content...)
	return buf
}
