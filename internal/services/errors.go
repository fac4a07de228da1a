package services

import "errors"

var (
	// ErrModelNotReady is returned for scoring requests that arrive before
	// a model has been loaded and published.
	ErrModelNotReady = errors.New("model not loaded")

	// ErrCatalogEmpty aborts a load attempt: there is nothing to size the
	// embedding table against.
	ErrCatalogEmpty = errors.New("no books in catalog")

	// ErrCheckpointNotFound means none of the configured candidate paths
	// held a checkpoint file.
	ErrCheckpointNotFound = errors.New("no checkpoint file found")
)
