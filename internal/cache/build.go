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

import (
	"context"
	"fmt"

	"github.com/geocore/vtserver/internal/conf"
)

// Build wires the configured memory front layer and durable backend into
// a ready-to-use Cache, following conf.Configuration.Cache.
func Build(ctx context.Context, cfg conf.CacheConfig) (*Cache, error) {
	var memory *TileCache
	if cfg.Enabled {
		tc, err := NewTileCache(cfg.MaxItems, cfg.MaxMemoryMB)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		memory = tc
	} else {
		memory = NewDisabledCache()
	}

	var backend Backend
	switch cfg.Backend {
	case "", "memory", "null":
		backend = NullBackend{}
	case "file":
		fb, err := NewFileBackend(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		backend = fb
	case "s3":
		sb, err := NewS3Backend(ctx, S3Config{
			Bucket:         cfg.Bucket,
			Prefix:         cfg.Prefix,
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			ForcePathStyle: cfg.ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		backend = sb
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}

	return New(memory, backend), nil
}
