package service

import "errors"

var (
	// ErrInvalidRequest marks caller mistakes: unknown fields, paths or
	// scenarios, or no values to analyze.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMappingVersion is returned when an existing index was built from a
	// different mapping version.
	ErrMappingVersion = errors.New("mapping version mismatch")
)
