package cache

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

// Key is the content-addressed tile-cache key from §3 Data Model:
// (tileset, z, x, y, format).
type Key struct {
	Tileset string
	Z, X, Y int
	Gzip    bool
}

// Path renders the on-disk/object-store path scheme
// "<tileset>/<z>/<x>/<y>.pbf[.gz]".
func (k Key) Path() string {
	if k.Gzip {
		return fmt.Sprintf("%s/%d/%d/%d.pbf.gz", k.Tileset, k.Z, k.X, k.Y)
	}
	return fmt.Sprintf("%s/%d/%d/%d.pbf", k.Tileset, k.Z, k.X, k.Y)
}

// String is the in-process memory-cache key, kept flat for the LRU
// backend and for prefix-based per-tileset clearing.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d:%d", k.Tileset, k.Z, k.X, k.Y)
}
