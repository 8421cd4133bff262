package service

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
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/data"
)

// handleTile serves an MVT tile for a given tileset and tile coordinate.
func handleTile(w http.ResponseWriter, r *http.Request) *appError {
	vars := mux.Vars(r)
	tilesetName := vars["tileset"]
	zStr := vars["z"]
	xStr := vars["x"]
	yStr := vars["y"]

	z, err := strconv.Atoi(zStr)
	if err != nil {
		return appErrorBadRequest(err, fmt.Sprintf("Invalid zoom level: %s", zStr))
	}
	x, err := strconv.Atoi(xStr)
	if err != nil {
		return appErrorBadRequest(err, fmt.Sprintf("Invalid x coordinate: %s", xStr))
	}
	y, err := strconv.Atoi(yStr)
	if err != nil {
		return appErrorBadRequest(err, fmt.Sprintf("Invalid y coordinate: %s", yStr))
	}

	if z < 0 || z > 30 {
		return appErrorBadRequest(nil, fmt.Sprintf("Zoom level out of range: %d", z))
	}
	maxCoord := 1 << uint(z)
	if x < 0 || x >= maxCoord {
		return appErrorBadRequest(nil, fmt.Sprintf("X coordinate out of range: %d (max: %d)", x, maxCoord-1))
	}
	if y < 0 || y >= maxCoord {
		return appErrorBadRequest(nil, fmt.Sprintf("Y coordinate out of range: %d (max: %d)", y, maxCoord-1))
	}

	log.Debugf("tile request: tileset=%s z=%d x=%d y=%d", tilesetName, z, x, y)

	tileData, err := catalogInstance.GenerateTile(r.Context(), tilesetName, z, x, y)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return appErrorNotFound(err, fmt.Sprintf("Tileset not found: %s", tilesetName))
		}
		return appErrorDatasource(err, fmt.Sprintf("Error generating tile: %v", err))
	}

	// An empty tile (no intersecting features at this zoom) is valid and
	// is returned as 204 No Content rather than an empty 200 body.
	if len(tileData) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	w.Header().Set("Content-Type", ContentTypeMVT)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(tileData); err != nil {
		return appErrorInternal(err, "Error writing tile data")
	}
	return nil
}

// handleTileJSON serves TileJSON 3.0.0 metadata for a tileset.
func handleTileJSON(w http.ResponseWriter, r *http.Request) *appError {
	vars := mux.Vars(r)
	tilesetName := vars["tileset"]

	log.Debugf("TileJSON request for tileset: %s", tilesetName)

	baseURL := getBaseURL(r)
	tj, err := catalogInstance.TileJSONFor(tilesetName, baseURL)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return appErrorNotFound(err, fmt.Sprintf("Tileset not found: %s", tilesetName))
		}
		return appErrorInternal(err, fmt.Sprintf("Error generating TileJSON: %v", err))
	}

	return writeJSON(w, ContentTypeJSON, tj)
}
