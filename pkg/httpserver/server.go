/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	tlog "github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/pkg/pkgerrors"
)

var logger = tlog.New("httpserver")

// BuildVersion is set at build time via -ldflags.
var BuildVersion = "unspecified"

const healthCheckEndpoint = "/healthcheck"

// Handler is an HTTP route: the path and method to register it under, and the handler func
// itself. Query-string parameters required for the route to match may be supplied via Params.
type Handler interface {
	Path() string
	Method() string
	Handler() http.HandlerFunc
}

// paramHolder is implemented by handlers that additionally require query-string parameters to
// match (e.g. `?domain=1`).
type paramHolder interface {
	Params() map[string]string
}

// Server implements an HTTP server exposing the handlers registered with it, plus a built-in
// /healthcheck endpoint, CORS, and optional bearer-token authorization.
type Server struct {
	httpServer *http.Server
	started    uint32
	certFile   string
	keyFile    string
}

// New returns a new HTTP server listening on url.
func New(url, certFile, keyFile, token string, handlers ...Handler) *Server {
	router := mux.NewRouter()

	if token != "" {
		router.Use(authorizationMiddleware(token))
	}

	for _, handler := range handlers {
		logger.Info("registering handler", zap.String("path", handler.Path()))
		router.HandleFunc(handler.Path(), handler.Handler()).
			Methods(handler.Method()).
			Queries(params(handler)...)
	}

	router.HandleFunc(healthCheckEndpoint, healthCheckHandler).Methods(http.MethodGet)

	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"*"},
		},
	).Handler(router)

	return &Server{
		httpServer: &http.Server{
			Addr:    url,
			Handler: handler,
		},
		certFile: certFile,
		keyFile:  keyFile,
	}
}

// Start starts the HTTP server in a separate Go routine.
func (s *Server) Start() error {
	if !atomic.CompareAndSwapUint32(&s.started, 0, 1) {
		return pkgerrors.NewProtocolf("server already started")
	}

	go func() {
		logger.Info("listening for requests", zap.String("address", s.httpServer.Addr))

		var err error
		if s.keyFile != "" && s.certFile != "" {
			err = s.httpServer.ListenAndServeTLS(s.certFile, s.keyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("failed to start server on [%s]: %s", s.httpServer.Addr, err))
		}

		atomic.StoreUint32(&s.started, 0)
		logger.Info("server has stopped")
	}()

	return nil
}

// Stop stops the REST service.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&s.started, 1, 0) {
		return pkgerrors.NewProtocolf("cannot stop HTTP server since it hasn't been started")
	}

	return s.httpServer.Shutdown(ctx)
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

type healthCheckResp struct {
	Status      string    `json:"status"`
	CurrentTime time.Time `json:"currentTime"`
}

func healthCheckHandler(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)

	err := json.NewEncoder(rw).Encode(&healthCheckResp{
		Status:      "success",
		CurrentTime: time.Now(),
	})
	if err != nil {
		logger.Error("healthcheck response failure", zap.Error(err))
	}
}

func params(handler Handler) []string {
	var queries []string

	if p, ok := handler.(paramHolder); ok {
		for name, value := range p.Params() {
			queries = append(queries, name, value)
		}
	}

	return queries
}
