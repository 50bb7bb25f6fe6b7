package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// audioSession buffers raw chunks for one recording session. No artifact
// materializes until Stop.
type audioSession struct {
	cancel  context.CancelFunc
	done    chan struct{}
	stream  Stream
	started time.Time

	mu     sync.Mutex
	chunks [][]byte
}

// AudioRecorder buffers a microphone stream continuously and emits exactly
// one AudioNote per session on Stop, with wall-clock duration measured
// from Start.
type AudioRecorder struct {
	source MediaSource
	opts   options

	mu   sync.Mutex
	sess *audioSession
}

// NewAudioRecorder creates an audio recorder over the given media source.
func NewAudioRecorder(source MediaSource, opts ...Option) *AudioRecorder {
	return &AudioRecorder{source: source, opts: buildOptions(opts)}
}

// Recording reports whether a session is active.
func (r *AudioRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess != nil
}

// Start acquires the microphone stream and begins buffering chunks.
func (r *AudioRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}

	stream, err := r.source.AcquireMicrophone(ctx)
	if err != nil {
		return fmt.Errorf("acquire microphone: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &audioSession{
		cancel:  cancel,
		done:    make(chan struct{}),
		stream:  stream,
		started: r.opts.clock(),
	}
	r.sess = sess
	go func() {
		defer close(sess.done)
		for {
			chunk, err := sess.stream.Next(runCtx)
			if err != nil {
				return
			}
			if len(chunk) == 0 {
				continue
			}
			sess.mu.Lock()
			sess.chunks = append(sess.chunks, chunk)
			sess.mu.Unlock()
		}
	}()
	r.opts.logger.Debug("audio recording started")
	return nil
}

// Stop finalizes the session and returns the single AudioNote it
// produced. Calling Stop while Idle is a no-op returning nil. The stream
// is released on every path.
func (r *AudioRecorder) Stop() *models.AudioNote {
	r.mu.Lock()
	sess := r.sess
	r.sess = nil
	r.mu.Unlock()
	if sess == nil {
		return nil
	}

	sess.cancel()
	<-sess.done
	if err := sess.stream.Close(); err != nil {
		r.opts.logger.Warn("closing microphone stream", "error", err)
	}

	now := r.opts.clock()
	sess.mu.Lock()
	var size int
	for _, c := range sess.chunks {
		size += len(c)
	}
	data := make([]byte, 0, size)
	for _, c := range sess.chunks {
		data = append(data, c...)
	}
	sess.chunks = nil
	sess.mu.Unlock()

	note := &models.AudioNote{
		ID:         models.NewID("audio"),
		Timestamp:  now,
		DurationMS: now.Sub(sess.started).Milliseconds(),
		Payload:    NewPayload(data, audioMIME),
	}
	r.opts.logger.Debug("audio recording stopped", "duration_ms", note.DurationMS, "bytes", size)
	return note
}

// Shutdown stops the session without emitting an artifact, releasing the
// stream and the buffered data.
func (r *AudioRecorder) Shutdown() {
	if note := r.Stop(); note != nil {
		note.Payload.Release()
	}
}
