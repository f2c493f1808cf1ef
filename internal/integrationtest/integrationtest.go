// Package integrationtest provides helpers used in end-to-end tests of the http server.
package integrationtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/cmd/httpserver"
	"github.com/go-petr/bank-registry/internal/middleware"
	"github.com/go-petr/bank-registry/internal/registry"
	"github.com/go-petr/bank-registry/pkg/configpkg"
)

// SetupServer returns test server backed by an empty in-memory registry.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	logger := middleware.CreateLogger(config).Level(zerolog.Disabled)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(registry.New(), logger, config, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf(`httpserver.New() returned error: %v`, err)
	}

	return server
}

// Do sends a request with an optional JSON body and bearer token to the server and returns the recorder.
func Do(t *testing.T, server http.Handler, method, url, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("http.NewRequest(%v, %v) returned error: %v", method, url, err)
	}

	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.AuthTypeBearer+" "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	return recorder
}

// Decode decodes the response body into v.
func Decode(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(recorder.Body).Decode(v); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}
}
