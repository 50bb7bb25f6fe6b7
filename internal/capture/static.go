package capture

import (
	"context"
	"time"
)

// StaticSource plays back pre-baked chunks at a fixed interval, standing
// in for a live device in tests and in the CLI demo recorder. After the
// chunks are exhausted the stream stays open (a live device does not end
// on its own) until the recorder cancels it.
type StaticSource struct {
	ScreenChunks [][]byte
	AudioChunks  [][]byte
	Interval     time.Duration

	// ScreenErr/AudioErr simulate acquisition failures.
	ScreenErr error
	AudioErr  error
}

// AcquireScreen returns a playback stream over ScreenChunks.
func (s *StaticSource) AcquireScreen(ctx context.Context) (Stream, error) {
	if s.ScreenErr != nil {
		return nil, s.ScreenErr
	}
	return &staticStream{chunks: s.ScreenChunks, interval: s.Interval}, nil
}

// AcquireMicrophone returns a playback stream over AudioChunks.
func (s *StaticSource) AcquireMicrophone(ctx context.Context) (Stream, error) {
	if s.AudioErr != nil {
		return nil, s.AudioErr
	}
	return &staticStream{chunks: s.AudioChunks, interval: s.Interval}, nil
}

type staticStream struct {
	chunks   [][]byte
	interval time.Duration
	pos      int
}

func (s *staticStream) Next(ctx context.Context) ([]byte, error) {
	if s.pos >= len(s.chunks) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.interval > 0 {
		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	chunk := s.chunks[s.pos]
	s.pos++
	// Copy so payloads do not alias the source's backing slices.
	out := make([]byte, len(chunk))
	copy(out, chunk)
	return out, nil
}

func (s *staticStream) Close() error { return nil }
