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
	"compress/gzip"
)

// Marshal assembles zero or more layers into a Tile message. Empty layers
// are elided; per §4.4, a tile with zero non-empty layers produces a
// zero-length payload rather than an empty-but-valid protobuf message, so
// callers can treat len(out)==0 as "no content" directly.
func Marshal(layers []*Layer) []byte {
	var buf []byte
	for _, l := range layers {
		if l.Empty() {
			continue
		}
		buf = appendEmbeddedMessage(buf, fieldTileLayers, l.Marshal())
	}
	return buf
}

// MarshalGzipped marshals the tile and gzip-compresses the result, the
// default wire envelope per §4.4 ("optionally gzip-compressed; clients
// request compressed (default) by accepting gzip"). A zero-length tile
// marshals to a zero-length result without invoking gzip, preserving the
// "empty means no content" contract.
func MarshalGzipped(layers []*Layer) ([]byte, error) {
	raw := Marshal(layers)
	if len(raw) == 0 {
		return nil, nil
	}
	var out bytes.Buffer
	gw := gzip.NewWriter(&out)
	if _, err := gw.Write(raw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
