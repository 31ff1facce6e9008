package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

type fakeIndexStore struct {
	indexes   map[string]string
	created   map[string]map[string]any
	remote    []analysis.Token
	analyzeOn string
	err       error
}

func newFakeIndexStore() *fakeIndexStore {
	return &fakeIndexStore{indexes: map[string]string{}, created: map[string]map[string]any{}}
}

func (f *fakeIndexStore) IndexExists(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.indexes[name]
	return ok, nil
}

func (f *fakeIndexStore) CreateIndex(_ context.Context, name string, body map[string]any) error {
	f.indexes[name] = schema.MappingVersion
	f.created[name] = body
	return nil
}

func (f *fakeIndexStore) DeleteIndex(_ context.Context, name string) error {
	if _, ok := f.indexes[name]; !ok {
		return elasticsearch.ErrIndexNotFound
	}
	delete(f.indexes, name)
	return nil
}

func (f *fakeIndexStore) MappingVersion(_ context.Context, index string) (string, error) {
	return f.indexes[index], nil
}

func (f *fakeIndexStore) Analyze(_ context.Context, _, field string, _ []string) ([]analysis.Token, error) {
	f.analyzeOn = field
	return f.remote, f.err
}

func newSchemaService(t *testing.T, store service.IndexStore) *service.SchemaService {
	t.Helper()

	svc, err := service.NewSchemaService(store, schema.DefaultOptions(), logger.NewFromZap(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return svc
}

func TestNewSchemaService_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	opts := schema.DefaultOptions()
	opts.Shards = 0

	_, err := service.NewSchemaService(newFakeIndexStore(), opts, nil)
	require.Error(t, err)
}

func TestSchemaService_CreateIndex(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	svc := newSchemaService(t, store)

	info, err := svc.CreateIndex(context.Background(), "places")
	require.NoError(t, err)
	assert.Equal(t, &service.IndexInfo{Name: "places", MappingVersion: schema.MappingVersion, Created: true}, info)
	assert.Equal(t, svc.Body(), store.created["places"])

	_, err = svc.CreateIndex(context.Background(), "places")
	require.ErrorIs(t, err, elasticsearch.ErrIndexExists)
}

func TestSchemaService_CreateIndexStoreError(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	store.err = errors.New("connection refused")

	_, err := newSchemaService(t, store).CreateIndex(context.Background(), "places")
	require.ErrorContains(t, err, "connection refused")
}

func TestSchemaService_EnsureIndex(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	svc := newSchemaService(t, store)
	ctx := context.Background()

	info, err := svc.EnsureIndex(ctx, "places")
	require.NoError(t, err)
	assert.True(t, info.Created)

	info, err = svc.EnsureIndex(ctx, "places")
	require.NoError(t, err)
	assert.False(t, info.Created)
	assert.Equal(t, schema.MappingVersion, info.MappingVersion)

	store.indexes["legacy"] = "0.9.0"
	info, err = svc.EnsureIndex(ctx, "legacy")
	require.ErrorIs(t, err, service.ErrMappingVersion)
	assert.Equal(t, "0.9.0", info.MappingVersion)
}

func TestSchemaService_DeleteIndex(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	svc := newSchemaService(t, store)

	_, err := svc.CreateIndex(context.Background(), "places")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteIndex(context.Background(), "places"))
	require.ErrorIs(t, svc.DeleteIndex(context.Background(), "places"), elasticsearch.ErrIndexNotFound)
}

func TestSchemaService_AnalyzeLocal(t *testing.T) {
	t.Parallel()

	svc := newSchemaService(t, newFakeIndexStore())

	tests := []struct {
		name      string
		req       service.AnalyzeRequest
		wantField string
		wantName  string
		wantTerms []string
	}{
		{
			name:      "exact defaults to country_a",
			req:       service.AnalyzeRequest{Values: []string{"N.Z.L."}},
			wantField: "parent.country_a",
			wantName:  schema.AnalyzerExact,
			wantTerms: []string{"nz", "nzl"},
		},
		{
			name:      "ngram",
			req:       service.AnalyzeRequest{Field: "country_a", Path: domain.PathNGram, Values: []string{"NZL"}},
			wantField: "parent.country_a.ngram",
			wantName:  schema.AnalyzerNGram,
			wantTerms: []string{"n", "nz", "nzl"},
		},
		{
			name:      "codes outside the table pass through",
			req:       service.AnalyzeRequest{Field: "region_a", Values: []string{"ON"}},
			wantField: "parent.region_a",
			wantName:  schema.AnalyzerExact,
			wantTerms: []string{"on"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Analyze(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, res.Field)
			assert.Equal(t, tt.wantName, res.Analyzer)
			assert.Equal(t, tt.wantTerms, res.Terms)
			assert.Nil(t, res.Remote)
		})
	}
}

func TestSchemaService_AnalyzeInvalid(t *testing.T) {
	t.Parallel()

	svc := newSchemaService(t, newFakeIndexStore())

	for name, req := range map[string]service.AnalyzeRequest{
		"unknown field": {Field: "country", Values: []string{"NZL"}},
		"unknown path":  {Path: "fuzzy", Values: []string{"NZL"}},
		"no values":     {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Analyze(context.Background(), req)
			require.ErrorIs(t, err, service.ErrInvalidRequest)
		})
	}
}

func TestSchemaService_AnalyzeRejectsUnconfiguredLayer(t *testing.T) {
	t.Parallel()

	opts := schema.DefaultOptions()
	opts.Layers = []string{"country"}
	svc, err := service.NewSchemaService(newFakeIndexStore(), opts, nil)
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), service.AnalyzeRequest{Field: "locality_a", Values: []string{"WLG"}})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	result, err := svc.Analyze(context.Background(), service.AnalyzeRequest{Field: "country_a", Values: []string{"NZL"}})
	require.NoError(t, err)
	assert.Contains(t, result.Terms, "nzl")
}

func TestSchemaService_AnalyzeRemoteDrift(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	store.remote = []analysis.Token{{Term: "nzl", Position: 0}, {Term: "new zealand", Position: 0}}
	svc := newSchemaService(t, store)

	res, err := svc.Analyze(context.Background(), service.AnalyzeRequest{Values: []string{"NZL"}, Index: "places"})
	require.NoError(t, err)

	assert.Equal(t, "parent.country_a", store.analyzeOn)
	require.NotNil(t, res.Remote)
	assert.True(t, res.Remote.Drift)
	assert.Equal(t, []string{"nz"}, res.Remote.Missing)
	assert.Equal(t, []string{"new zealand"}, res.Remote.Extra)
}

func TestSchemaService_AnalyzeRemoteAgrees(t *testing.T) {
	t.Parallel()

	store := newFakeIndexStore()
	store.remote = []analysis.Token{{Term: "nzl", Position: 0}, {Term: "nz", Position: 0}}
	svc := newSchemaService(t, store)

	res, err := svc.Analyze(context.Background(), service.AnalyzeRequest{Values: []string{"nzl"}, Index: "places"})
	require.NoError(t, err)
	require.NotNil(t, res.Remote)
	assert.False(t, res.Remote.Drift)
	assert.Equal(t, []string{"nz", "nzl"}, res.Remote.Terms)
}
