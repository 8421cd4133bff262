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

import "context"

// Backend is the durable tile-cache capability of §4.7: a tile is either
// absent or present, writes are at-most-once (a Backend may reject or
// silently ignore a Put over an existing key; callers that need
// overwrite semantics check Exists themselves first), and the three
// operations never partially fail a tile (a Get either returns whole
// bytes or "not found").
type Backend interface {
	Get(ctx context.Context, key Key) (data []byte, ok bool, err error)
	Put(ctx context.Context, key Key, data []byte) error
	Exists(ctx context.Context, key Key) (bool, error)
}
