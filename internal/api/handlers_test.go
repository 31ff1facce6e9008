package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/api"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

var errClusterDown = errors.New("cluster unavailable")

// fakeStore keeps index names only. Every contract suite fails at index
// creation when down is set.
type fakeStore struct {
	indexes map[string]string
	down    bool
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := f.indexes[name]
	return ok, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, name string, _ map[string]any) error {
	if f.down {
		return errClusterDown
	}
	f.indexes[name] = schema.MappingVersion
	return nil
}

func (f *fakeStore) DeleteIndex(_ context.Context, name string) error {
	if _, ok := f.indexes[name]; !ok {
		return elasticsearch.ErrIndexNotFound
	}
	delete(f.indexes, name)
	return nil
}

func (f *fakeStore) MappingVersion(_ context.Context, index string) (string, error) {
	return f.indexes[index], nil
}

func (f *fakeStore) Analyze(context.Context, string, string, []string) ([]analysis.Token, error) {
	return nil, elasticsearch.ErrIndexNotFound
}

func (f *fakeStore) WaitForIndex(context.Context, string, time.Duration) error { return nil }

func (f *fakeStore) IndexDocument(context.Context, string, domain.Document) error { return nil }

func (f *fakeStore) Refresh(context.Context, string) error { return nil }

func (f *fakeStore) Search(context.Context, string, map[string]any) (*domain.SearchResponse, error) {
	return &domain.SearchResponse{}, nil
}

type testServer struct {
	router  http.Handler
	store   *fakeStore
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := &fakeStore{indexes: map[string]string{}, down: true}
	opts := schema.DefaultOptions()
	log := logger.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	schemaService, err := service.NewSchemaService(store, opts, log)
	require.NoError(t, err)
	runner := contract.NewRunner(store, schemaService.Body(), contract.RunnerOptions{}, log, m)
	verifyService := service.NewVerifyService(runner, opts, log)

	server := api.NewServer(
		api.NewHandler(schemaService, verifyService, log),
		api.ServerConfig{ServiceName: "place-schema", ServiceVersion: "test"},
		m,
		func(context.Context) error { return nil },
		log,
	)
	return &testServer{router: server.Router(), store: store, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestGetSchema(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, schema.MappingVersion, w.Header().Get("X-Mapping-Version"))

	body := decode[map[string]any](t, w)
	assert.Contains(t, body, "settings")
	assert.Contains(t, body, "mappings")
}

func TestCreateIndex(t *testing.T) {
	s := newTestServer(t)
	s.store.down = false

	w := s.do(t, http.MethodPost, "/api/v1/indexes", `{"index_name":"places"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	info := decode[service.IndexInfo](t, w)
	assert.Equal(t, "places", info.Name)
	assert.True(t, info.Created)

	w = s.do(t, http.MethodPost, "/api/v1/indexes", `{"index_name":"places"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/indexes", `{"index_name":"places","ensure":true}`)
	assert.Equal(t, http.StatusOK, w.Code)

	s.store.indexes["legacy"] = "0.1.0"
	w = s.do(t, http.MethodPost, "/api/v1/indexes", `{"index_name":"legacy","ensure":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/indexes", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIndex_StoreFailure(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/indexes", `{"index_name":"places"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), errClusterDown.Error())
}

func TestDeleteIndex(t *testing.T) {
	s := newTestServer(t)
	s.store.indexes["places"] = schema.MappingVersion

	w := s.do(t, http.MethodDelete, "/api/v1/indexes/places", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, s.store.indexes, "places")

	w = s.do(t, http.MethodDelete, "/api/v1/indexes/places", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/analyze", `{"field":"country_a","path":"ngram","values":["NZ"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[service.AnalyzeResult](t, w)
	assert.Equal(t, "parent.country_a.ngram", res.Field)
	assert.Equal(t, []string{"n", "nz", "nzl"}, res.Terms)

	w = s.do(t, http.MethodPost, "/api/v1/analyze", `{"field":"name","values":["NZ"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/analyze", `{"values":["NZ"],"index":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/analyze", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/verify", `{"offline":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[contract.Report](t, w)
	assert.Equal(t, "offline", report.Mode)
	assert.Len(t, report.Scenarios, 3)

	w = s.do(t, http.MethodPost, "/api/v1/verify", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	report = decode[contract.Report](t, w)
	assert.Equal(t, "cluster", report.Mode)
	for _, sc := range report.Scenarios {
		assert.False(t, sc.Passed)
		require.Len(t, sc.Errors, 1)
		assert.True(t, strings.HasPrefix(sc.Errors[0], "create_index: "), sc.Errors[0])
	}

	w = s.do(t, http.MethodPost, "/api/v1/verify", `{"scenarios":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify_ChunkedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", io.NopCloser(strings.NewReader(`{"offline":true}`)))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, int64(-1), req.ContentLength)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "offline", decode[contract.Report](t, w).Mode)
}

func TestVerify_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/verify", `{"offline":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"elasticsearch"`)

	s.do(t, http.MethodGet, "/api/v1/schema", "")

	w = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `place_schema_http_requests_total{method="GET",route="/api/v1/schema",status="200"} 1`)
}
