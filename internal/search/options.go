package search

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notekit/internal/apperr"
)

// SortOrder selects how results are ordered.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortDate      SortOrder = "date"
)

// Defaults used when an Options field is left at its zero value.
const (
	DefaultFuzzyThreshold = 0.6
	DefaultMaxResults     = 100
	DefaultSuggestLimit   = 5
)

// Options tunes Search. Zero fields take the package defaults.
type Options struct {
	FuzzyThreshold float64   `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	MaxResults     int       `json:"max_results" yaml:"max_results"`
	SortBy         SortOrder `json:"sort_by" yaml:"sort_by"`
}

// DefaultOptions returns the options used by an unconfigured search.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		MaxResults:     DefaultMaxResults,
		SortBy:         SortRelevance,
	}
}

// Validate checks ranges after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	err := validation.ValidateStruct(&o,
		validation.Field(&o.FuzzyThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&o.MaxResults, validation.Min(1)),
		validation.Field(&o.SortBy, validation.In(SortRelevance, SortDate)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.FuzzyThreshold == 0 {
		o.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if o.MaxResults == 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.SortBy == "" {
		o.SortBy = SortRelevance
	}
	return o
}
