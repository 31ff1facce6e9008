package query_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/query"
)

func TestAbbreviation(t *testing.T) {
	tests := []struct {
		name string
		path domain.Path
		code string
		want string
	}{
		{"exact", domain.PathExact, "nzl", `{"query":{"match":{"parent.country_a":{"query":"nzl"}}}}`},
		{"ngram", domain.PathNGram, "nz", `{"query":{"match":{"parent.country_a.ngram":{"query":"nz"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := query.Abbreviation("country_a", tt.path, tt.code)
			require.NoError(t, err)

			data, err := json.Marshal(body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestAbbreviation_EmptyCode(t *testing.T) {
	_, err := query.Abbreviation("country_a", domain.PathExact, "  ")
	require.ErrorIs(t, err, query.ErrEmptyCode)
}
