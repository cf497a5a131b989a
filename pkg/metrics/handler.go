/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsEndpoint = "/metrics"

// Handler is an httpserver.Handler exposing this package's registered metrics in Prometheus
// exposition format. The metrics themselves register against the default prometheus
// registerer, so the handler only needs to wrap promhttp's own default-registerer collector.
type Handler struct{}

// NewHandler returns a new /metrics handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Method returns the HTTP method, which is always GET.
func (h *Handler) Method() string {
	return http.MethodGet
}

// Path returns the base path of the target URL for this handler.
func (h *Handler) Path() string {
	return metricsEndpoint
}

// Handler returns the handler that should be invoked when a request is made to the target
// endpoint. This handler must be registered with an HTTP server.
func (h *Handler) Handler() http.HandlerFunc {
	promHandler := promhttp.Handler()

	return promHandler.ServeHTTP
}
