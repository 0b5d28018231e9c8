package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/netrics-lab/netrics-dashboard/internal/warming"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fixedWarming struct {
	status warming.Status
}

func (f fixedWarming) Status() warming.Status { return f.status }

func newTestServer(t *testing.T, reporter WarmingReporter) *Server {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/pending/000001.json", []byte(`{"Meta": {"Time": 1}}`), 0o644))

	caches := datafile.NewCaches(fs, datafile.CacheOptions{
		PayloadCapacity: 10,
		ListingCapacity: 10,
		ListingTTL:      time.Hour,
	})
	_, err := caches.Payloads.Get("/data/pending/000001.json")
	require.NoError(t, err)

	return New(Options{
		Addr:            "127.0.0.1:0",
		Mode:            "release",
		SoftwareVersion: "1.2.3",
		Caches:          caches,
		Warming:         reporter,
	})
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestServer_Health(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestServer(t, fixedWarming{status: warming.Status{
		Ran:    true,
		At:     at,
		Report: datafile.PopulateReport{Dirs: 1, Files: 1},
	}})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Status  string         `json:"status"`
		Caches  map[string]int `json:"caches"`
		Warming warming.Status `json:"warming"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, 1, body.Caches["payloads"])
	require.Equal(t, 1, body.Caches["payload_parses"])
	require.True(t, body.Warming.Ran)
	require.True(t, at.Equal(body.Warming.At))
	require.Equal(t, 1, body.Warming.Report.Files)
}

func TestServer_HealthWithoutWarmingRun(t *testing.T) {
	s := newTestServer(t, fixedWarming{})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, map[string]any{"ran": false}, body["warming"])
}

func TestServer_ResponseHeaders(t *testing.T) {
	s := newTestServer(t, nil)

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, SoftwareName, resp.Header().Get("Software"))
	require.Equal(t, "1.2.3", resp.Header().Get("Software-Version"))
	require.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp = serve(s, req)
	require.Equal(t, "req-42", resp.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "dashboard_")
}
