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
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// errorKind is the six-kind error taxonomy of §7, plus two request-layer
// access-control kinds the teacher's cache endpoints also need.
type errorKind string

const (
	kindInvalidRequest errorKind = "invalid_request"
	kindNotFound       errorKind = "not_found"
	kindDatasource     errorKind = "datasource_error"
	kindEncoding       errorKind = "encoding_error"
	kindCache          errorKind = "cache_error"
	kindInternal       errorKind = "internal_error"
	kindUnauthorized   errorKind = "unauthorized"
	kindForbidden      errorKind = "forbidden"
)

// appError is the error type every route handler returns instead of
// writing its own failure response; appHandler turns a non-nil one into
// a logged, JSON-bodied HTTP response.
type appError struct {
	Err     error
	Message string
	Kind    errorKind
	Status  int
}

func (e *appError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func newAppError(kind errorKind, status int, err error, message string) *appError {
	return &appError{Err: err, Message: message, Kind: kind, Status: status}
}

func appErrorBadRequest(err error, message string) *appError {
	return newAppError(kindInvalidRequest, http.StatusBadRequest, err, message)
}

func appErrorNotFound(err error, message string) *appError {
	return newAppError(kindNotFound, http.StatusNotFound, err, message)
}

func appErrorDatasource(err error, message string) *appError {
	return newAppError(kindDatasource, http.StatusBadGateway, err, message)
}

func appErrorEncoding(err error, message string) *appError {
	return newAppError(kindEncoding, http.StatusInternalServerError, err, message)
}

func appErrorCache(err error, message string) *appError {
	return newAppError(kindCache, http.StatusInternalServerError, err, message)
}

func appErrorInternal(err error, message string) *appError {
	return newAppError(kindInternal, http.StatusInternalServerError, err, message)
}

func appErrorUnauthorized(err error, message string) *appError {
	return newAppError(kindUnauthorized, http.StatusUnauthorized, err, message)
}

func appErrorForbidden(err error, message string) *appError {
	return newAppError(kindForbidden, http.StatusForbidden, err, message)
}

// errorBody is the JSON shape written for a non-nil appError.
type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// appHandler adapts a handler returning *appError into an http.Handler,
// logging the underlying error (if any) and writing a JSON error body;
// it never lets a panic in Message construction leak a raw Go error to
// the client.
type appHandler func(http.ResponseWriter, *http.Request) *appError

func (fn appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e := fn(w, r)
	if e == nil {
		return
	}

	if e.Err != nil {
		log.WithError(e.Err).Errorf("%s %s: %s", r.Method, r.URL.Path, e.Message)
	} else {
		log.Warnf("%s %s: %s", r.Method, r.URL.Path, e.Message)
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(errorBody{
		Error:   string(e.Kind),
		Kind:    string(e.Kind),
		Message: e.Message,
	})
}

// writeJSON marshals v as the JSON body of a 200 OK response.
func writeJSON(w http.ResponseWriter, contentType string, v any) *appError {
	w.Header().Set("Content-Type", contentType)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return appErrorInternal(err, "Error encoding response")
	}
	return nil
}
