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

// NullBackend is the serve-only mode of §4.7: every Get misses, every
// Put is a no-op. It lets a tileset run without a durable cache behind
// it while still satisfying the Backend contract.
type NullBackend struct{}

func (NullBackend) Get(ctx context.Context, key Key) ([]byte, bool, error) { return nil, false, nil }
func (NullBackend) Exists(ctx context.Context, key Key) (bool, error)      { return false, nil }
func (NullBackend) Put(ctx context.Context, key Key, data []byte) error   { return nil }
