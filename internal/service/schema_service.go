// Package service holds the operations shared by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

const defaultAnalyzeField = "country_a"

// IndexStore is the part of the document store SchemaService needs.
type IndexStore interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, body map[string]any) error
	DeleteIndex(ctx context.Context, name string) error
	MappingVersion(ctx context.Context, index string) (string, error)
	Analyze(ctx context.Context, index, field string, values []string) ([]analysis.Token, error)
}

// IndexInfo describes an index managed by SchemaService.
type IndexInfo struct {
	Name           string `json:"name"`
	MappingVersion string `json:"mapping_version"`
	Created        bool   `json:"created"`
}

// AnalyzeRequest asks how values are tokenized on one abbreviation field.
type AnalyzeRequest struct {
	// Field defaults to country_a.
	Field  string      `json:"field"`
	Path   domain.Path `json:"path"`
	Values []string    `json:"values"`
	// Index, when set, also runs the values through that index's analyzer.
	Index string `json:"index,omitempty"`
}

// AnalyzeResult is the local analysis and, when an index was given, the
// cluster's analysis and the difference between the two.
type AnalyzeResult struct {
	Field    string           `json:"field"`
	Analyzer string           `json:"analyzer"`
	Tokens   []analysis.Token `json:"tokens"`
	Terms    []string         `json:"terms"`
	Remote   *RemoteAnalysis  `json:"remote,omitempty"`
}

// RemoteAnalysis is what the cluster produced for the same values.
type RemoteAnalysis struct {
	Index  string           `json:"index"`
	Tokens []analysis.Token `json:"tokens"`
	Terms  []string         `json:"terms"`
	// Missing terms were produced locally only, Extra terms by the cluster
	// only.
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
	Drift   bool     `json:"drift"`
}

// SchemaService builds the index body and manages indexes created from it.
type SchemaService struct {
	store IndexStore
	opts  schema.Options
	body  map[string]any
	exact *analysis.Analyzer
	ngram *analysis.Analyzer
	log   logger.Logger
}

// NewSchemaService validates opts and builds the index body once.
func NewSchemaService(store IndexStore, opts schema.Options, log logger.Logger) (*SchemaService, error) {
	body, err := schema.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	exact, ngram := analysis.ForOptions(opts)
	return &SchemaService{store: store, opts: opts, body: body, exact: exact, ngram: ngram, log: log}, nil
}

// Body returns the index creation body.
func (s *SchemaService) Body() map[string]any {
	return s.body
}

// Options returns the options the body was built from.
func (s *SchemaService) Options() schema.Options {
	return s.opts
}

// CreateIndex creates name from the body. It fails with
// elasticsearch.ErrIndexExists when the index is already there.
func (s *SchemaService) CreateIndex(ctx context.Context, name string) (*IndexInfo, error) {
	exists, err := s.store.IndexExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil, fmt.Errorf("create index %s: %w", name, elasticsearch.ErrIndexExists)
	}

	if err = s.store.CreateIndex(ctx, name, s.body); err != nil {
		return nil, fmt.Errorf("create index %s: %w", name, err)
	}
	s.log.Info("Index created",
		logger.String("index_name", name),
		logger.String("mapping_version", schema.MappingVersion),
	)
	return &IndexInfo{Name: name, MappingVersion: schema.MappingVersion, Created: true}, nil
}

// EnsureIndex creates name when missing. An existing index must carry the
// current mapping version, otherwise ErrMappingVersion is returned.
func (s *SchemaService) EnsureIndex(ctx context.Context, name string) (*IndexInfo, error) {
	info, err := s.CreateIndex(ctx, name)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, elasticsearch.ErrIndexExists) {
		return nil, err
	}

	version, err := s.store.MappingVersion(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read mapping version of %s: %w", name, err)
	}
	info = &IndexInfo{Name: name, MappingVersion: version}
	if version != schema.MappingVersion {
		s.log.Warn("Index mapping version drift detected",
			logger.String("index_name", name),
			logger.String("current_version", version),
			logger.String("latest_version", schema.MappingVersion),
		)
		return info, fmt.Errorf("%w: index %s has %q, want %q", ErrMappingVersion, name, version, schema.MappingVersion)
	}
	return info, nil
}

// DeleteIndex deletes name.
func (s *SchemaService) DeleteIndex(ctx context.Context, name string) error {
	if err := s.store.DeleteIndex(ctx, name); err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	s.log.Info("Index deleted", logger.String("index_name", name))
	return nil
}

// Analyze tokenizes req.Values with the local analyzer of the requested
// sub-field and, when req.Index is set, compares against the cluster.
func (s *SchemaService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if req.Field == "" {
		req.Field = defaultAnalyzeField
	}
	if !schema.IsAbbreviationField(s.opts.Layers, req.Field) {
		return nil, fmt.Errorf("%w: %q is not an abbreviation field", ErrInvalidRequest, req.Field)
	}
	path, err := domain.ParsePath(string(req.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if len(req.Values) == 0 {
		return nil, fmt.Errorf("%w: no values to analyze", ErrInvalidRequest)
	}

	analyzer := s.exact
	if path == domain.PathNGram {
		analyzer = s.ngram
	}
	tokens := analyzer.Analyze(req.Values)
	result := &AnalyzeResult{
		Field:    path.Field(req.Field),
		Analyzer: analyzer.Name(),
		Tokens:   tokens,
		Terms:    analysis.Terms(tokens),
	}
	if req.Index == "" {
		return result, nil
	}

	remote, err := s.store.Analyze(ctx, req.Index, result.Field, req.Values)
	if err != nil {
		return nil, fmt.Errorf("analyze on %s: %w", req.Index, err)
	}
	remoteTerms := analysis.Terms(remote)
	missing, extra := analysis.Diff(result.Terms, remoteTerms)
	result.Remote = &RemoteAnalysis{
		Index:   req.Index,
		Tokens:  remote,
		Terms:   remoteTerms,
		Missing: missing,
		Extra:   extra,
		Drift:   len(missing) > 0 || len(extra) > 0,
	}
	if result.Remote.Drift {
		s.log.Warn("Analyzer drift detected",
			logger.String("index_name", req.Index),
			logger.String("field", result.Field),
			logger.Strings("missing", missing),
			logger.Strings("extra", extra),
		)
	}
	return result, nil
}
