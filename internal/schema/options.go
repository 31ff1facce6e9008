package schema

import (
	"errors"
	"fmt"
)

const (
	defaultShards      = 1
	defaultNGramMin    = 1
	defaultNGramMax    = 24
	defaultPositionGap = 100
)

// Options shape the generated index body.
type Options struct {
	Shards   int
	Replicas int

	NGramMin int
	NGramMax int

	// PositionIncrementGap separates array values so a phrase can never span
	// two abbreviations.
	PositionIncrementGap int

	Synonyms *SynonymSet

	// Layers defaults to AdminLayers.
	Layers []string
}

// DefaultOptions returns the production schema with the country code table.
func DefaultOptions() Options {
	return Options{
		Shards:               defaultShards,
		NGramMin:             defaultNGramMin,
		NGramMax:             defaultNGramMax,
		PositionIncrementGap: defaultPositionGap,
		Synonyms:             CountryCodeSynonyms(),
		Layers:               AdminLayers,
	}
}

// Validate rejects options Elasticsearch would refuse at index creation.
func (o Options) Validate() error {
	var errs []error
	if o.Shards < 1 {
		errs = append(errs, fmt.Errorf("shards must be at least 1, got %d", o.Shards))
	}
	if o.Replicas < 0 {
		errs = append(errs, fmt.Errorf("replicas must not be negative, got %d", o.Replicas))
	}
	if o.NGramMin < 1 {
		errs = append(errs, fmt.Errorf("ngram min must be at least 1, got %d", o.NGramMin))
	}
	if o.NGramMax < o.NGramMin {
		errs = append(errs, fmt.Errorf("ngram max %d is below min %d", o.NGramMax, o.NGramMin))
	}
	if o.PositionIncrementGap < 0 {
		errs = append(errs, fmt.Errorf("position increment gap must not be negative, got %d", o.PositionIncrementGap))
	}
	if len(o.Layers) == 0 {
		errs = append(errs, errors.New("at least one layer is required"))
	}
	return errors.Join(errs...)
}
