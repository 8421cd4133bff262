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

	"github.com/geocore/vtserver/internal/cache"
)

// HealthResponse represents the JSON response for the /health endpoint
type HealthResponse struct {
	Status      string           `json:"status"`
	Datasources map[string]string `json:"datasources"`
	Cache       CacheStatus      `json:"cache"`
}

// CacheStatus represents cache health information
type CacheStatus struct {
	Enabled bool         `json:"enabled"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

// handleHealth returns health status of the service, pinging every
// configured datasource and reporting the tile cache's state.
func handleHealth(w http.ResponseWriter, r *http.Request) *appError {
	log.Debug("health check request")

	health := HealthResponse{
		Status:      "ok",
		Datasources: map[string]string{},
	}

	if catalogInstance == nil {
		health.Status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
		return writeJSON(w, ContentTypeJSON, health)
	}

	pings := catalogInstance.Ping(r.Context())
	failed := 0
	for name, err := range pings {
		if err != nil {
			log.Warnf("datasource %s: health check failed: %v", name, err)
			health.Datasources[name] = "error: " + err.Error()
			failed++
		} else {
			health.Datasources[name] = "ok"
		}
	}
	switch {
	case len(pings) > 0 && failed == len(pings):
		health.Status = "error"
	case failed > 0:
		health.Status = "degraded"
	}

	cacheStatus := CacheStatus{
		Enabled: serviceInstance != nil && serviceInstance.cache != nil && serviceInstance.cache.Enabled(),
	}
	if cacheStatus.Enabled {
		stats := serviceInstance.cache.Stats()
		cacheStatus.Stats = &stats
	}
	health.Cache = cacheStatus

	switch health.Status {
	case "ok", "degraded":
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	return writeJSON(w, ContentTypeJSON, health)
}
