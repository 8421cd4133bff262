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

	"github.com/theckman/httpforwarded"
)

// serveURLBase reconstructs the externally visible base URL (scheme +
// host) for a request, honoring a standard Forwarded header (RFC 7239)
// when the server sits behind a reverse proxy, falling back to the
// X-Forwarded-* pair, and finally to the request's own Host/TLS state.
func serveURLBase(r *http.Request) string {
	scheme, host := forwardedSchemeHost(r)
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}

func forwardedSchemeHost(r *http.Request) (scheme, host string) {
	if fwd := r.Header.Get("Forwarded"); fwd != "" {
		params := httpforwarded.ParseParameter(httpforwarded.ParamProto, []string{fwd})
		if len(params) > 0 {
			scheme = params[0]
		}
		hosts := httpforwarded.ParseParameter(httpforwarded.ParamHost, []string{fwd})
		if len(hosts) > 0 {
			host = hosts[0]
		}
		if scheme != "" || host != "" {
			return scheme, host
		}
	}
	if v := r.Header.Get("X-Forwarded-Proto"); v != "" {
		scheme = v
	}
	if v := r.Header.Get("X-Forwarded-Host"); v != "" {
		host = v
	}
	return scheme, host
}
