package index

import "errors"

var (
	// ErrNotInitialized is returned when an operation runs before the model
	// (or, for Add, the graph) has been initialized.
	ErrNotInitialized = errors.New("index store not initialized")

	// ErrIndexExists is returned by InitIndex when a graph already exists.
	ErrIndexExists = errors.New("index already initialized")

	// ErrDimensionMismatch is returned when a vector's width differs from the model's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSnapshotCorrupt is returned when snapshot blobs cannot be decoded or
	// disagree with each other.
	ErrSnapshotCorrupt = errors.New("index snapshot corrupt")

	// ErrIndexInconsistent is returned by Add when the graph and the passage
	// list no longer line up, e.g. after loading a snapshot missing one blob.
	ErrIndexInconsistent = errors.New("index graph and passages disagree")
)
