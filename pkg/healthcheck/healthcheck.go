/*
   Copyright SecureKey Technologies Inc.

   This file contains software code that is the intellectual property of SecureKey.
   SecureKey reserves all rights in the code and you may not use it without
	 written permission from SecureKey.
*/

package healthcheck

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/karma3labs/eigentrust-pipeline/pkg/httpserver"
)

var logger = log.New("healthcheck")

const (
	healthCheckEndpoint = "/healthcheck"

	success      = "success"
	notConnected = "not connected"
	unknown      = "unknown error"
)

// Handler implements a health check HTTP handler reporting on the collaborators a pipeline
// service depends on: its pub/sub transport and its key/value store.
type Handler struct {
	pubSub          pubSub
	store           store
	maintenanceMode bool
}

type pubSub interface {
	IsConnected() bool
}

type store interface {
	Ping() error
}

// NewHandler returns a new health check handler. Either collaborator may be nil, in which case
// its status is omitted from the response.
func NewHandler(pubSub pubSub, store store, maintenanceMode bool) *Handler {
	return &Handler{
		pubSub:          pubSub,
		store:           store,
		maintenanceMode: maintenanceMode,
	}
}

// Method returns the HTTP method, which is always GET.
func (h *Handler) Method() string {
	return http.MethodGet
}

// Path returns the base path of the target URL for this handler.
func (h *Handler) Path() string {
	return healthCheckEndpoint
}

// Handler returns the handler that should be invoked when a request is made to the target
// endpoint. This handler must be registered with an HTTP server.
func (h *Handler) Handler() http.HandlerFunc {
	return h.checkHealth
}

type response struct {
	MQStatus    string    `json:"mqStatus,omitempty"`
	StoreStatus string    `json:"storeStatus,omitempty"`
	Status      string    `json:"status,omitempty"`
	CurrentTime time.Time `json:"currentTime,omitempty"`
	Version     string    `json:"version,omitempty"`
}

func (h *Handler) checkHealth(rw http.ResponseWriter, _ *http.Request) {
	returnStatusServiceUnavailable := false

	unavailable, mqStatus := h.mqHealthCheck()
	if unavailable {
		returnStatusServiceUnavailable = true
	}

	unavailable, storeStatus := h.storeHealthCheck()
	if unavailable {
		returnStatusServiceUnavailable = true
	}

	status := http.StatusOK

	if returnStatusServiceUnavailable {
		status = http.StatusServiceUnavailable
	}

	hc := &response{
		MQStatus:    mqStatus,
		StoreStatus: storeStatus,
		CurrentTime: time.Now(),
		Status:      "OK",
		Version:     httpserver.BuildVersion,
	}

	if h.maintenanceMode {
		// server has been started in maintenance mode so we should return 200 from health check
		// even if health check is failing in order to give an admin opportunity to fix system configuration
		status = http.StatusOK
		hc.Status = "Maintenance"
	}

	hcBytes, err := json.Marshal(hc)
	if err != nil {
		logger.Error("Healthcheck marshal error", log.WithError(err))

		return
	}

	logger.Debug("Health check returning response", log.WithHTTPStatus(status), log.WithResponse(hcBytes))

	rw.WriteHeader(status)

	_, err = rw.Write(hcBytes)
	if err != nil {
		logger.Error("Healthcheck response failure", log.WithError(err))
	}
}

func (h *Handler) mqHealthCheck() (bool, string) {
	if h.pubSub == nil {
		return false, ""
	}

	if h.pubSub.IsConnected() {
		return false, success
	}

	return true, notConnected
}

func (h *Handler) storeHealthCheck() (bool, string) {
	if h.store == nil {
		return false, ""
	}

	err := h.store.Ping()
	if err == nil {
		return false, success
	}

	return true, toStatus(err)
}

func toStatus(err error) string {
	if err.Error() != "" {
		return err.Error()
	}

	return unknown
}
