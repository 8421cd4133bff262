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
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/conf"
)

// tileCacheMiddleware wraps the tile handler to check the cache first.
func (s *Service) tileCacheMiddleware(next appHandler) appHandler {
	return func(w http.ResponseWriter, r *http.Request) *appError {
		if s == nil || s.cache == nil || !s.cache.Enabled() {
			return next(w, r)
		}

		vars := mux.Vars(r)
		z, _ := strconv.Atoi(vars["z"])
		x, _ := strconv.Atoi(vars["x"])
		y, _ := strconv.Atoi(vars["y"])
		key := cache.Key{Tileset: vars["tileset"], Z: z, X: x, Y: y}

		maxAge := conf.Configuration.Cache.BrowserCacheMaxAge

		if cachedTile, found, err := s.cache.Get(r.Context(), key); err == nil && found {
			w.Header().Set("Content-Type", ContentTypeMVT)
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

			if len(cachedTile) == 0 {
				w.WriteHeader(http.StatusNoContent)
			} else {
				w.WriteHeader(http.StatusOK)
				w.Write(cachedTile)
			}
			return nil
		}

		w.Header().Set("X-Cache", "MISS")
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

		recorder := &responseCapturer{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
		}

		appErr := next(recorder, r)

		if appErr == nil && (recorder.statusCode == http.StatusOK || recorder.statusCode == http.StatusNoContent) {
			body := recorder.body.Bytes()
			go s.cache.Put(r.Context(), key, body)
		}

		return appErr
	}
}

// responseCapturer captures the response body to store in cache
type responseCapturer struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (rc *responseCapturer) Write(b []byte) (int, error) {
	// If WriteHeader wasn't called explicitly, assume 200 OK
	if rc.statusCode == 0 {
		rc.statusCode = http.StatusOK
	}

	// Capture body
	rc.body.Write(b)

	// Write to original response
	return rc.ResponseWriter.Write(b)
}

func (rc *responseCapturer) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}
