/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"net/http"

	"github.com/trustbloc/logutil-go/pkg/log"

	logfields "github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
)

const loggerModule = "maintenance"

const serviceUnavailableResponse = "Service Unavailable.\n"

// Handler is the subset of httpserver.Handler that HandlerWrapper wraps.
type Handler interface {
	Path() string
	Method() string
	Handler() http.HandlerFunc
}

// HandlerWrapper wraps an existing HTTP handler and call to handler endpoint returns 503 (Service Unavailable).
// The wrapped handler is never invoked.
type HandlerWrapper struct {
	Handler

	writeResponse func(w http.ResponseWriter, status int, body []byte)
	logger        *log.Log
}

// NewMaintenanceWrapper will return service unavailable for handler that was passed in.
func NewMaintenanceWrapper(handler Handler) *HandlerWrapper {
	logger := log.New(loggerModule, log.WithFields(logfields.WithServiceEndpoint(handler.Path())))

	return &HandlerWrapper{
		Handler: handler,
		logger:  logger,
		writeResponse: func(w http.ResponseWriter, status int, body []byte) {
			w.WriteHeader(status)

			if len(body) > 0 {
				if _, err := w.Write(body); err != nil {
					log.WriteResponseBodyError(logger, err)

					return
				}

				log.WroteResponse(logger, body)
			}
		},
	}
}

// Handler returns the 'wrapper' handler.
func (h *HandlerWrapper) Handler() http.HandlerFunc { //nolint:golint
	return func(w http.ResponseWriter, _ *http.Request) {
		h.writeResponse(w, http.StatusServiceUnavailable, []byte(serviceUnavailableResponse))
	}
}
