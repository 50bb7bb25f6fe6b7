package capture

import "context"

// Stream is a live chunked media stream. Next blocks until the source
// produces a chunk, the stream ends (io.EOF), or ctx is done. Close
// releases the underlying device or connection and must always be called;
// it is safe to call more than once.
type Stream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// MediaSource is the platform media-acquisition capability. Acquire calls
// fail fast with ErrPermissionDenied or ErrDeviceUnavailable; on failure no
// stream handle is left open.
type MediaSource interface {
	AcquireScreen(ctx context.Context) (Stream, error)
	AcquireMicrophone(ctx context.Context) (Stream, error)
}
