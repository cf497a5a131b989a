/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestConfig() Config {
	return Config{
		AuthTokensDef: []*TokenDef{
			{
				EndpointExpression: "/services/outbox",
				ReadTokens:         []string{"admin", "read"},
				WriteTokens:        []string{"admin"},
			},
		},
		AuthTokens: map[string]string{
			"read":  "READ_TOKEN",
			"admin": "ADMIN_TOKEN",
		},
	}
}

func TestTokenVerifier(t *testing.T) {
	t.Run("POST with valid auth token -> success", func(t *testing.T) {
		v := NewTokenVerifier(newTestConfig(), "/services/outbox", http.MethodPost)
		require.NotNil(t, v)

		req := httptest.NewRequest(http.MethodPost, "/services/outbox", nil)
		req.Header[authHeader] = []string{tokenPrefix + "ADMIN_TOKEN"}

		require.True(t, v.Verify(req))
	})

	t.Run("GET with no auth token -> unauthorized", func(t *testing.T) {
		v := NewTokenVerifier(newTestConfig(), "/services/outbox", http.MethodGet)
		require.NotNil(t, v)

		req := httptest.NewRequest(http.MethodGet, "/services/outbox", nil)

		require.False(t, v.Verify(req))
	})

	t.Run("GET with invalid auth token -> unauthorized", func(t *testing.T) {
		v := NewTokenVerifier(newTestConfig(), "/services/outbox", http.MethodGet)
		require.NotNil(t, v)

		req := httptest.NewRequest(http.MethodGet, "/services/outbox", nil)
		req.Header[authHeader] = []string{tokenPrefix + "INVALID_TOKEN"}

		require.False(t, v.Verify(req))
	})

	t.Run("GET with valid read token -> success", func(t *testing.T) {
		v := NewTokenVerifier(newTestConfig(), "/services/outbox", http.MethodGet)
		require.NotNil(t, v)

		req := httptest.NewRequest(http.MethodGet, "/services/outbox", nil)
		req.Header[authHeader] = []string{tokenPrefix + "READ_TOKEN"}

		require.True(t, v.Verify(req))
	})

	t.Run("Open access when no tokens apply to the endpoint", func(t *testing.T) {
		v := NewTokenVerifier(newTestConfig(), "/services/unprotected", http.MethodGet)
		require.NotNil(t, v)

		req := httptest.NewRequest(http.MethodGet, "/services/unprotected", nil)

		require.True(t, v.Verify(req))
	})

	t.Run("Token not found -> panic", func(t *testing.T) {
		cfg := Config{
			AuthTokensDef: []*TokenDef{
				{
					EndpointExpression: "/services/outbox",
					ReadTokens:         []string{"missing"},
				},
			},
		}

		require.Panics(t, func() {
			NewTokenVerifier(cfg, "/services/outbox", http.MethodGet)
		})
	})
}
