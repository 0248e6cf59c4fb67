package schema

import "errors"

// Error kinds. Every failure surfaced by the pipeline wraps exactly one of
// these, so callers can branch with errors.Is. None of them are retried.
var (
	// ErrConfiguration means the version triple is incomplete or a custom
	// manifest path cannot be read.
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedManifest means the manifest bytes do not have the expected shape.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrResolution means the manifest artifact could not be resolved, or
	// the resolved artifact has no manifest entry.
	ErrResolution = errors.New("resolution failure")

	// ErrClassFileCorruption means a targeted entry is not a parseable class file.
	ErrClassFileCorruption = errors.New("class file corruption")

	// ErrIO covers archive, entry and record store I/O.
	ErrIO = errors.New("io failure")

	// ErrRecordNotFound is returned by record stores when nothing was committed yet.
	ErrRecordNotFound = errors.New("record not found")
)
