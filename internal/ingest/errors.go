package ingest

import "fmt"

// DownloadError carries the structured error message the provider returns
// instead of a snapshot when it refuses a download.
type DownloadError struct {
	Message string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download rejected: %s", e.Message)
}

// UnexpectedResponseError reports a response that is neither a snapshot
// stream nor a provider error message.
type UnexpectedResponseError struct {
	StatusCode int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response with status %d", e.StatusCode)
}

// DecodeError reports a failure while decompressing the snapshot stream.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode snapshot: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadError reports a failure on one line of a snapshot file.
type LoadError struct {
	Line int64
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load line %d: %v", e.Line, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
