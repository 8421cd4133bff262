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
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/data"
)

// TilesetsResponse represents the JSON response for the /tilesets endpoint
type TilesetsResponse struct {
	Tilesets []data.TilesetSummary `json:"tilesets"`
}

// handleTilesets lists every configured tileset with its zoom range.
func handleTilesets(w http.ResponseWriter, r *http.Request) *appError {
	log.Debug("tilesets request")

	response := TilesetsResponse{
		Tilesets: catalogInstance.Summaries(),
	}

	return writeJSON(w, ContentTypeJSON, response)
}
