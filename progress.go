package signet

// ProgressEvent represents a progress update during a long-running operation.
type ProgressEvent struct {
	// Operation identifies the operation type ("download").
	Operation string
	// BytesTransferred is the cumulative bytes transferred so far.
	BytesTransferred int64
	// TotalBytes is the total expected size, or -1 when unknown.
	TotalBytes int64
}

// ProgressCallback is called during long-running operations to report
// progress. Implementations should be efficient as this may be called
// frequently.
type ProgressCallback func(event ProgressEvent)
