package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

const (
	screenMIME = "image/png"
	audioMIME  = "audio/webm"

	// defaultFrameInterval is the minimum spacing between sampled frames.
	// The cadence is not regular: frames materialize when chunks arrive.
	defaultFrameInterval = time.Second
)

type options struct {
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a recorder.
type Option func(*options)

// WithFrameInterval sets the minimum spacing between sampled frames.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithClock injects a clock for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the recorder logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		interval: defaultFrameInterval,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// screenSession holds the state of one recording session. Each Start
// creates a fresh session so a Stop/Start overlap can never clobber
// another session's buffers.
type screenSession struct {
	cancel context.CancelFunc
	done   chan struct{}
	stream Stream

	mu        sync.Mutex
	frames    []*models.CaptureFrame
	lastChunk []byte
	lastFrame time.Time
}

// ScreenRecorder samples a live screen stream into discrete timestamped
// frames. Lifecycle is Idle -> Recording -> Idle; a second Start while
// Recording fails with ErrAlreadyRecording and leaves the active session
// untouched.
type ScreenRecorder struct {
	source MediaSource
	opts   options

	mu   sync.Mutex
	sess *screenSession
}

// NewScreenRecorder creates a screen recorder over the given media source.
func NewScreenRecorder(source MediaSource, opts ...Option) *ScreenRecorder {
	return &ScreenRecorder{source: source, opts: buildOptions(opts)}
}

// Recording reports whether a session is active.
func (r *ScreenRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess != nil
}

// Start acquires the screen stream and begins buffering frames. It fails
// fast: acquisition errors surface immediately and leave no dangling
// stream handle.
func (r *ScreenRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}

	stream, err := r.source.AcquireScreen(ctx)
	if err != nil {
		return fmt.Errorf("acquire screen: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &screenSession{
		cancel: cancel,
		done:   make(chan struct{}),
		stream: stream,
	}
	r.sess = sess
	go r.run(runCtx, sess)
	r.opts.logger.Debug("screen recording started")
	return nil
}

func (r *ScreenRecorder) run(ctx context.Context, sess *screenSession) {
	defer close(sess.done)
	for {
		chunk, err := sess.stream.Next(ctx)
		if err != nil {
			return
		}
		now := r.opts.clock()
		sess.mu.Lock()
		sess.lastChunk = chunk
		if sess.lastFrame.IsZero() || now.Sub(sess.lastFrame) >= r.opts.interval {
			sess.frames = append(sess.frames, &models.CaptureFrame{
				ID:        models.NewID("frame"),
				Timestamp: now,
				Payload:   NewPayload(chunk, screenMIME),
			})
			sess.lastFrame = now
		}
		sess.mu.Unlock()
	}
}

// Stop finalizes the active session and returns the frames it produced, in
// capture order. A session that received any data yields at least one
// frame; one that received none yields an empty list. Calling Stop while
// Idle is a no-op returning an empty list. The stream is released on every
// path.
func (r *ScreenRecorder) Stop() []*models.CaptureFrame {
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
		r.opts.logger.Warn("closing screen stream", "error", err)
	}

	sess.mu.Lock()
	frames := sess.frames
	if len(frames) == 0 && sess.lastChunk != nil {
		frames = []*models.CaptureFrame{{
			ID:        models.NewID("frame"),
			Timestamp: r.opts.clock(),
			Payload:   NewPayload(sess.lastChunk, screenMIME),
		}}
	}
	sess.frames = nil
	sess.mu.Unlock()

	r.opts.logger.Debug("screen recording stopped", "frames", len(frames))
	return frames
}

// Shutdown is the teardown path when no caller is present to receive
// artifacts: it stops the session, releases the stream, and discards any
// buffered frames.
func (r *ScreenRecorder) Shutdown() {
	for _, f := range r.Stop() {
		f.Payload.Release()
	}
}
