package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/metrics"
)

type stubGetter struct {
	got []domain.TitleID
}

func (g *stubGetter) Get(ctx context.Context, id domain.TitleID) domain.Record {
	g.got = append(g.got, id)
	if id == "tt404" {
		return domain.ErrorRecord(id, "HTTP 404")
	}
	return domain.Record{"id": string(id), "title": "The Shawshank Redemption"}
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestGetTitle_OK(t *testing.T) {
	g := &stubGetter{}
	srv := httptest.NewServer(NewRouter(Options{Titles: g}))
	defer srv.Close()

	resp, body := getJSON(t, srv, "/title/tt0111161")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tt0111161", body["id"])
	assert.Equal(t, "The Shawshank Redemption", body["title"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, []domain.TitleID{"tt0111161"}, g.got)
}

func TestGetTitle_FailedRecordIs502(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Titles: &stubGetter{}}))
	defer srv.Close()

	resp, body := getJSON(t, srv, "/title/tt404")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "HTTP 404", body["message"])
}

func TestGetTitle_InvalidID(t *testing.T) {
	g := &stubGetter{}
	srv := httptest.NewServer(NewRouter(Options{Titles: g}))
	defer srv.Close()

	resp, body := getJSON(t, srv, "/title/tt1.html")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, body["error"])
	assert.Empty(t, g.got, "非法 id 不应发起查询")
}

func TestRequestID_EchoesIncoming(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Titles: &stubGetter{}}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Titles: &stubGetter{}}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/title/tt1", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveTitle(metrics.ResultOK, 120*time.Millisecond)

	srv := httptest.NewServer(NewRouter(Options{Titles: &stubGetter{}, Gatherer: reg}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "titlemeta_titles_total")
}

func TestMetricsEndpoint_DisabledWithoutGatherer(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Titles: &stubGetter{}}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
