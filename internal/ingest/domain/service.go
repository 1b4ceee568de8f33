package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Ingest decodes and parses payload as CSV with a header row, validates
	// each data row and persists the valid ones. Row failures are collected
	// into the Result; only undecodable or unparseable input aborts the
	// whole batch.
	Ingest(ctx context.Context, payload []byte) (Result, error)
}

var (
	ErrInvalidEncoding = errors.New("invalid_encoding")
	ErrMalformedCSV    = errors.New("malformed_csv")
)
