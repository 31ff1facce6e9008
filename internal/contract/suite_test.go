package contract_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

func indexDoc(doc domain.Document) contract.Step {
	return func(ctx context.Context, s *contract.Suite) error {
		return s.Store().IndexDocument(ctx, s.Index(), doc)
	}
}

func TestSuite_IndexName(t *testing.T) {
	suite := contract.NewSuite(newMemStore(schema.DefaultOptions()), nil, contract.SuiteOptions{IndexPrefix: "contract"})

	name := suite.Index()
	require.True(t, strings.HasPrefix(name, "contract-"))
	_, err := uuid.Parse(strings.TrimPrefix(name, "contract-"))
	require.NoError(t, err)

	other := contract.NewSuite(newMemStore(schema.DefaultOptions()), nil, contract.SuiteOptions{IndexPrefix: "contract"})
	assert.NotEqual(t, name, other.Index())
}

func TestSuite_RunsActionsThenRefreshThenAssertions(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	suite := contract.NewSuite(store, nil, contract.SuiteOptions{})

	suite.Action(indexDoc(domain.NewDocument("1", "country_a", "NZL")))
	suite.Action(indexDoc(domain.NewDocument("2", "country_a", "NZ")))

	var total int64
	suite.Assert(func(ctx context.Context, s *contract.Suite) error {
		res, err := s.Store().Search(ctx, s.Index(), map[string]any{
			"query": map[string]any{"match": map[string]any{"parent.country_a": map[string]any{"query": "nzl"}}},
		})
		if err != nil {
			return err
		}
		total = domain.GetTotalHits(res.Hits)
		return nil
	})

	require.NoError(t, suite.Run(context.Background()))
	assert.Equal(t, []string{"create", "wait", "index:1", "index:2", "refresh", "search", "delete"}, store.opNames())
	assert.Equal(t, int64(2), total, "both writes are visible to the first assertion")
	assert.Zero(t, store.indexCount())
}

func TestSuite_ActionFailureStopsRunAndCleansUp(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	store.failOn["index:1"] = errors.New("rejected")

	suite := contract.NewSuite(store, nil, contract.SuiteOptions{})
	suite.Action(indexDoc(domain.NewDocument("1", "country_a", "NZL")))
	suite.Action(indexDoc(domain.NewDocument("2", "country_a", "NZ")))
	asserted := false
	suite.Assert(func(context.Context, *contract.Suite) error {
		asserted = true
		return nil
	})

	err := suite.Run(context.Background())
	require.Error(t, err)

	stepErrs := contract.StepErrors(err)
	require.Len(t, stepErrs, 1)
	assert.Equal(t, contract.StageAction, stepErrs[0].Stage)
	assert.Equal(t, 0, stepErrs[0].Step)

	assert.False(t, asserted)
	assert.Equal(t, []string{"create", "wait", "index:1", "delete"}, store.opNames())
}

func TestSuite_CreateFailureSkipsCleanup(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	store.failOn["create"] = errors.New("cluster read-only")

	err := contract.NewSuite(store, nil, contract.SuiteOptions{}).Run(context.Background())

	stepErrs := contract.StepErrors(err)
	require.Len(t, stepErrs, 1)
	assert.Equal(t, contract.StageCreateIndex, stepErrs[0].Stage)
	assert.Equal(t, []string{"create"}, store.opNames())
}

func TestSuite_AllAssertionsRunAndFailuresJoin(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	suite := contract.NewSuite(store, nil, contract.SuiteOptions{})

	ran := 0
	for i := range 3 {
		suite.Assert(func(context.Context, *contract.Suite) error {
			ran++
			if i != 1 {
				return errors.New("nope")
			}
			return nil
		})
	}

	err := suite.Run(context.Background())
	assert.Equal(t, 3, ran)

	stepErrs := contract.StepErrors(err)
	require.Len(t, stepErrs, 2)
	assert.Equal(t, contract.StageAssert, stepErrs[0].Stage)
	assert.Equal(t, 0, stepErrs[0].Step)
	assert.Equal(t, 2, stepErrs[1].Step)
}

func TestSuite_CleanupFailureIsReported(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	store.failOn["delete"] = errors.New("timeout")

	err := contract.NewSuite(store, nil, contract.SuiteOptions{}).Run(context.Background())

	stepErrs := contract.StepErrors(err)
	require.Len(t, stepErrs, 1)
	assert.Equal(t, contract.StageCleanup, stepErrs[0].Stage)
}

func TestSuite_KeepIndex(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())

	require.NoError(t, contract.NewSuite(store, nil, contract.SuiteOptions{KeepIndex: true}).Run(context.Background()))
	assert.NotContains(t, store.opNames(), "delete")
	assert.Equal(t, 1, store.indexCount())
}

func TestSuite_CleansUpAfterCancellation(t *testing.T) {
	store := newMemStore(schema.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())

	suite := contract.NewSuite(store, nil, contract.SuiteOptions{SettleDelay: 24 * time.Hour})
	suite.Action(func(context.Context, *contract.Suite) error {
		cancel()
		return nil
	})

	err := suite.Run(ctx)
	stepErrs := contract.StepErrors(err)
	require.Len(t, stepErrs, 1)
	assert.Equal(t, contract.StageSettle, stepErrs[0].Stage)
	assert.Contains(t, store.opNames(), "delete")
}
