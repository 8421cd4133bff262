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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// FileBackend stores tiles under Root following the
// "<tileset>/<z>/<x>/<y>.pbf[.gz]" path scheme of §4.7, writing each tile
// via a temp-file-then-rename so a reader never observes a partial file.
type FileBackend struct {
	Root string
}

// NewFileBackend ensures Root exists and returns a backend rooted at it.
func NewFileBackend(root string) (*FileBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("file cache backend: %w", err)
	}
	return &FileBackend{Root: root}, nil
}

func (f *FileBackend) fullPath(key Key) string {
	return filepath.Join(f.Root, filepath.FromSlash(key.Path()))
}

func (f *FileBackend) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(f.fullPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileBackend) Exists(ctx context.Context, key Key) (bool, error) {
	_, err := os.Stat(f.fullPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Put writes data atomically: a temp file in the target directory is
// written and fsynced, then renamed over the final path, so concurrent
// readers and a crash mid-write never observe a truncated tile.
func (f *FileBackend) Put(ctx context.Context, key Key, data []byte) error {
	dst := f.fullPath(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file cache backend: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tile-*.tmp")
	if err != nil {
		return fmt.Errorf("file cache backend: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file cache backend: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file cache backend: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file cache backend: close temp: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("file cache backend: rename: %w", err)
	}
	tmpName = ""
	log.Debugf("file cache backend: wrote %s (%d bytes)", dst, len(data))
	return nil
}
