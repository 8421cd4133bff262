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

	"github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/conf"
	"github.com/geocore/vtserver/internal/data"
)

// Service bundles the process-wide dependencies route handlers close
// over: the tile cache. catalogInstance is kept as a separate package
// global (not a Service field) because the teacher's handler files
// already reference catalogInstance directly throughout, and that
// shape is kept rather than threaded through every handler signature.
type Service struct {
	cache *cache.Cache
}

var (
	catalogInstance *data.Catalog
	serviceInstance *Service
)

// Initialize wires the process-wide Catalog and Cache, the equivalent of
// the teacher's main() building catalogInstance/serviceInstance before
// calling Serve.
func Initialize(cat *data.Catalog, cch *cache.Cache) {
	catalogInstance = cat
	serviceInstance = &Service{cache: cch}
}

// Serve starts the HTTP server on conf.Configuration.Server.BindAddress,
// wrapping the router in the teacher's combined-logging handler.
func Serve(bindAddress string) error {
	router := initRouter(conf.Configuration.Server.BasePath)
	logged := handlers.CombinedLoggingHandler(log.StandardLogger().Writer(), router)
	log.Infof("listening on %s", bindAddress)
	return http.ListenAndServe(bindAddress, logged)
}
