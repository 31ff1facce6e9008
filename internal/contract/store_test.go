package contract_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

const presenceScore = 0.2876821

// scoreFunc scores a matching document. values are the stored field values.
type scoreFunc func(values []string, call int) float64

// memStore is an in-memory Store that analyzes documents with the Go analyzer
// models. Writes only become searchable after Refresh.
type memStore struct {
	mu sync.Mutex

	exact *analysis.Analyzer
	ngram *analysis.Analyzer
	score scoreFunc

	pending  map[string][]domain.Document
	visible  map[string][]domain.Document
	calls    []string
	failOn   map[string]error
	searches int
}

func newMemStore(opts schema.Options) *memStore {
	exact, ngram := analysis.ForOptions(opts)
	return &memStore{
		exact:   exact,
		ngram:   ngram,
		score:   func([]string, int) float64 { return presenceScore },
		pending: map[string][]domain.Document{},
		visible: map[string][]domain.Document{},
		failOn:  map[string]error{},
	}
}

func (m *memStore) record(op string) error {
	m.calls = append(m.calls, op)
	return m.failOn[op]
}

func (m *memStore) opNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *memStore) CreateIndex(_ context.Context, name string, _ map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("create"); err != nil {
		return err
	}
	if _, exists := m.visible[name]; exists {
		return errors.New("index exists")
	}
	m.visible[name] = nil
	return nil
}

func (m *memStore) WaitForIndex(context.Context, string, time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("wait")
}

func (m *memStore) IndexDocument(_ context.Context, index string, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("index:" + doc.ID); err != nil {
		return err
	}
	m.pending[index] = append(m.pending[index], doc)
	return nil
}

func (m *memStore) Refresh(_ context.Context, index string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("refresh"); err != nil {
		return err
	}
	m.visible[index] = append(m.visible[index], m.pending[index]...)
	m.pending[index] = nil
	return nil
}

func (m *memStore) Search(_ context.Context, index string, body map[string]any) (*domain.SearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("search"); err != nil {
		return nil, err
	}
	m.searches++

	path, text, err := parseMatch(body)
	if err != nil {
		return nil, err
	}
	field := strings.TrimSuffix(strings.TrimPrefix(path, "parent."), ".ngram")
	analyzer := m.exact
	if strings.HasSuffix(path, ".ngram") {
		analyzer = m.ngram
	}
	queryTokens := m.exact.Analyze([]string{text})

	res := &domain.SearchResponse{}
	for _, doc := range m.visible[index] {
		values := doc.Parent[field]
		if analysis.Matches(analyzer.Analyze(values), queryTokens) {
			res.Hits.Hits = append(res.Hits.Hits, domain.Hit{Index: index, ID: doc.ID, Score: m.score(values, m.searches)})
		}
	}
	res.Hits.Total = domain.TotalHits{Value: int64(len(res.Hits.Hits)), Relation: "eq"}
	return res, nil
}

func (m *memStore) DeleteIndex(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("delete"); err != nil {
		return err
	}
	delete(m.visible, name)
	delete(m.pending, name)
	return nil
}

func (m *memStore) indexCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visible)
}

func parseMatch(body map[string]any) (path, text string, err error) {
	q, _ := body["query"].(map[string]any)
	match, _ := q["match"].(map[string]any)
	for p, v := range match {
		clause, _ := v.(map[string]any)
		t, _ := clause["query"].(string)
		return p, t, nil
	}
	return "", "", fmt.Errorf("not a match query: %v", body)
}
