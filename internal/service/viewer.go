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
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/conf"
	"github.com/geocore/vtserver/internal/ui"
)

// serveMapViewer serves the HTML index page listing configured tilesets.
func serveMapViewer(w http.ResponseWriter, r *http.Request) *appError {
	log.Debug("viewer request")

	templ, err := ui.LoadTemplate("index.gohtml")
	if err != nil {
		return appErrorInternal(err, "Error loading viewer template")
	}

	baseURL := getBaseURL(r)
	data := ui.IndexData{
		Title:       conf.Configuration.Metadata.Title,
		Description: conf.Configuration.Metadata.Description,
	}
	if catalogInstance != nil {
		for _, ts := range catalogInstance.Summaries() {
			data.Tilesets = append(data.Tilesets, ui.TilesetLink{
				Name:        ts.Name,
				TileJSONURL: fmt.Sprintf("%s/tilesets/%s.json", baseURL, ts.Name),
				MinZoom:     ts.MinZoom,
				MaxZoom:     ts.MaxZoom,
			})
		}
	}

	w.Header().Set("Content-Type", ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if err := templ.Execute(w, data); err != nil {
		return appErrorInternal(err, "Error rendering viewer")
	}

	return nil
}
