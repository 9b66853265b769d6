package session

import (
	"time"

	"github.com/peekdb/peek/internal/engine"
)

const (
	// DefaultQueryText is installed after every successful file load so the
	// grid always opens with a small preview.
	DefaultQueryText = "SELECT * FROM source LIMIT 3"

	// DefaultMaxRows caps how many rows a query materializes for display.
	// The engine still reports the uncapped total.
	DefaultMaxRows = 1000
)

// State is the authoritative session snapshot: the active file, the query
// text, the last result, in-flight flags, and the last error. Snapshots are
// replaced wholesale on every transition; callers must treat the contents
// as immutable.
type State struct {
	FileMeta          *engine.FileMetadata
	QueryText         string
	Result            *engine.QueryResult
	IsLoadingFile     bool
	IsRunningQuery    bool
	LastQueryDuration time.Duration
	LastError         error
}

// HasFile reports whether a file has been successfully loaded.
func (s State) HasFile() bool { return s.FileMeta != nil }

// HasResult reports whether a query result is available for display.
func (s State) HasResult() bool { return s.Result != nil }

// Busy reports whether any engine operation is in flight.
func (s State) Busy() bool { return s.IsLoadingFile || s.IsRunningQuery }
