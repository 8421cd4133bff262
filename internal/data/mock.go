package data

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

	"github.com/geocore/vtserver/internal/datasource"
	"github.com/geocore/vtserver/internal/grid"
	"github.com/geocore/vtserver/internal/tileset"
)

// mockAdapter stands in for a real datasource in tests: it reports as
// unreachable so handler tests can exercise the degraded/error health
// paths without a real database.
type mockAdapter struct{}

func (mockAdapter) Ping(ctx context.Context) error {
	return errors.New("mock datasource: not connected")
}
func (mockAdapter) DescribeLayer(ctx context.Context, l *tileset.Layer) (datasource.LayerDescription, error) {
	return datasource.LayerDescription{}, errors.New("mock datasource: not connected")
}
func (mockAdapter) DetectExtent(ctx context.Context, l *tileset.Layer) (grid.Extent, error) {
	return grid.Extent{}, errors.New("mock datasource: not connected")
}
func (mockAdapter) QueryFeatures(ctx context.Context, req datasource.QueryRequest) ([]datasource.Feature, error) {
	return nil, errors.New("mock datasource: not connected")
}
func (mockAdapter) Close() error { return nil }

// CatMockInstance returns a Catalog with one unreachable mock
// datasource and no tilesets, used by handler tests in place of a live
// Catalog (mirrors the teacher's own test fixture pattern).
func CatMockInstance() *Catalog {
	return NewCatalog(
		map[string]datasource.Adapter{"mock": mockAdapter{}},
		map[string]*tileset.Tileset{},
	)
}
