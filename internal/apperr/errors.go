// Package apperr defines the error kinds shared across vaultjoin.
//
// Callers test for a kind with errors.Is; the concrete cause is always wrapped.
package apperr

import "errors"

// Note and vault errors.
var (
	ErrIO               = errors.New("io error")
	ErrMissingMetadata  = errors.New("no metadata found")
	ErrUnclosedMetadata = errors.New("no closing --- for metadata found")
	ErrMetadata         = errors.New("metadata error")
	ErrMalformedVault   = errors.New("vault was malformed")
)

// Service errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPath     = errors.New("invalid path")
	ErrUnknownStrategy = errors.New("unknown strategy")
)
