package httpadapter_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabencana/cap-feed-service/internal/adapter/httpadapter"
	"github.com/petabencana/cap-feed-service/internal/domain"
	"github.com/petabencana/cap-feed-service/internal/pipeline"
)

type readiness struct{ err error }

func (r readiness) CheckReadiness(context.Context) error { return r.err }

func newServer(t *testing.T, ready error) *httpadapter.Server {
	t.Helper()
	s, err := domain.NewSettings("Asia/Jakarta", 6*time.Hour, domain.DefaultTemplates())
	require.NoError(t, err)
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	renderer := pipeline.NewRenderer(domain.NewAssembler(s, domain.WithClock(clock)), nil, slog.Default(), clock)
	return httpadapter.NewServer(":0", readiness{err: ready}, renderer, slog.Default())
}

const floodDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[106,-6],[107,-6],[107,-5],[106,-6]]]},
   "properties":{"area_name":"Menteng","parent_name":"Jakarta Pusat","state":2,"last_updated":"2023-01-01T00:00:00Z"}},
  {"type":"Feature","geometry":{"type":"Point","coordinates":[106,-6]},
   "properties":{"area_name":"Gambir","parent_name":"Jakarta Pusat","state":2,"last_updated":"2023-01-01T00:00:00Z"}}
]}`

func TestServer_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Readyz(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newServer(t, errors.New("no feeds yet")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RenderFloods(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cap/floods", strings.NewReader(floodDoc))
	newServer(t, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/atom+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Feed-Entries"))
	assert.Equal(t, "1", rec.Header().Get("X-Feed-Skipped"))

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "petabencana.id Flood Affected Areas", feed.Title)
	require.Len(t, feed.Items, 1)
}

func TestServer_RenderUnknownKind(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cap/quakes", strings.NewReader(floodDoc))
	newServer(t, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RenderBadDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cap/reports", strings.NewReader(`{"type":"Feature"}`))
	newServer(t, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RenderMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cap/floods", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
