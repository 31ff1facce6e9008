//go:build integration

package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
	"github.com/jonesrussell/north-cloud/place-schema/internal/testhelpers"
)

func TestContract_LiveCluster(t *testing.T) {
	store := testhelpers.Elasticsearch(t)
	log := logger.NewFromZap(zaptest.NewLogger(t))

	runner := contract.NewRunner(store, schema.MustBuild(schema.DefaultOptions()), contract.RunnerOptions{
		IndexPrefix:     "place-schema-it",
		Repeat:          3,
		ScenarioTimeout: 2 * time.Minute,
	}, log, nil)

	report := runner.Run(context.Background(), contract.DefaultScenarios())
	require.True(t, report.Passed(), report.Summary())

	for _, sc := range report.Scenarios {
		exists, err := store.IndexExists(context.Background(), sc.Index)
		require.NoError(t, err)
		assert.False(t, exists, "index %s was not cleaned up", sc.Index)
	}
}

func TestContract_LiveClusterAgreesWithOffline(t *testing.T) {
	store := testhelpers.Elasticsearch(t)

	opts := schema.DefaultOptions()
	live := contract.NewRunner(store, schema.MustBuild(opts), contract.RunnerOptions{}, nil, nil).
		Run(context.Background(), contract.DefaultScenarios())
	offline := contract.VerifyOffline(opts, contract.DefaultScenarios())

	require.Len(t, live.Scenarios, len(offline.Scenarios))
	for i := range live.Scenarios {
		for j, check := range live.Scenarios[i].Checks {
			assert.Equal(t, offline.Scenarios[i].Checks[j].TotalHits, check.TotalHits, check.Name)
		}
	}
}
