package domain

import "go.trai.ch/zerr"

var (
	// ErrNoDriverFound is returned when no usable vendor library could be located
	// for a required category.
	ErrNoDriverFound = zerr.New("no host graphics driver found")

	// ErrClassificationConflict is returned when winner selection cannot narrow a
	// category down to a single candidate.
	ErrClassificationConflict = zerr.New("classification conflict")

	// ErrCacheIO is returned when copying a library or persisting the manifest fails.
	ErrCacheIO = zerr.New("cache i/o failure")

	// ErrPatchFailed is returned when the runpath editing tool failed after a retry.
	ErrPatchFailed = zerr.New("runpath patch failed")

	// ErrExecFailed is returned when the target command cannot be found or executed.
	ErrExecFailed = zerr.New("exec failed")

	// ErrConfigInvalid is returned when the optional configuration file cannot be parsed.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrUsage is returned for contradictory or missing command line arguments.
	ErrUsage = zerr.New("invalid usage")
)
