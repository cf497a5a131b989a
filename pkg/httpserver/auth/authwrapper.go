/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"net/http"

	"github.com/trustbloc/logutil-go/pkg/log"

	logfields "github.com/karma3labs/eigentrust-pipeline/internal/pkg/log"
)

const (
	loggerModule         = "auth"
	unauthorizedResponse = "Unauthorized.\n"
)

// Handler is the subset of httpserver.Handler that HandlerWrapper wraps.
type Handler interface {
	Path() string
	Method() string
	Handler() http.HandlerFunc
}

// HandlerWrapper wraps an existing HTTP handler and performs bearer token authorization.
// If authorized then the wrapped handler is invoked.
type HandlerWrapper struct {
	Handler

	verifier      *TokenVerifier
	handleRequest http.HandlerFunc
	writeResponse func(w http.ResponseWriter, status int, body []byte)
	logger        *log.Log
}

// NewHandlerWrapper returns a handler that first performs bearer token authorization and, if authorized,
// invokes the wrapped handler.
func NewHandlerWrapper(cfg Config, handler Handler) *HandlerWrapper {
	logger := log.New(loggerModule, log.WithFields(logfields.WithServiceEndpoint(handler.Path())))

	return &HandlerWrapper{
		verifier:      NewTokenVerifier(cfg, handler.Path(), handler.Method()),
		Handler:       handler,
		handleRequest: handler.Handler(),
		logger:        logger,
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
	return func(w http.ResponseWriter, req *http.Request) {
		if !h.verifier.Verify(req) {
			h.writeResponse(w, http.StatusUnauthorized, []byte(unauthorizedResponse))

			return
		}

		h.handleRequest(w, req)
	}
}
