package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Bridge is a MediaSource backed by a capture bridge: a companion process
// (typically the browser half of the studio) that exposes one websocket
// endpoint per capture surface and forwards MediaRecorder data-available
// chunks as binary messages.
type Bridge struct {
	baseURL string
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

// NewBridge creates a bridge source. baseURL is a ws:// or wss:// URL
// without a trailing path; endpoints are <base>/screen and <base>/mic.
func NewBridge(baseURL string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
		logger:  logger,
	}
}

// AcquireScreen dials the bridge's screen endpoint.
func (b *Bridge) AcquireScreen(ctx context.Context) (Stream, error) {
	return b.dial(ctx, "screen")
}

// AcquireMicrophone dials the bridge's microphone endpoint.
func (b *Bridge) AcquireMicrophone(ctx context.Context) (Stream, error) {
	return b.dial(ctx, "mic")
}

func (b *Bridge) dial(ctx context.Context, surface string) (Stream, error) {
	url := b.baseURL + "/" + surface
	conn, resp, err := b.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: bridge refused %s", ErrPermissionDenied, surface)
			}
		}
		return nil, fmt.Errorf("%w: dial %s: %v", ErrDeviceUnavailable, url, err)
	}
	b.logger.Debug("capture bridge connected", "surface", surface)
	return newWSStream(conn), nil
}

// wsStream adapts a websocket connection to the Stream contract. Binary
// messages are chunks; a normal close ends the stream.
type wsStream struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closed    chan struct{}
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn, closed: make(chan struct{})}
}

func (s *wsStream) Next(ctx context.Context) ([]byte, error) {
	// ReadMessage has no context form; closing the connection unblocks it.
	watch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-watch:
		case <-s.closed:
		}
	}()
	defer close(watch)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil, fmt.Errorf("%w: bridge closed: %s", ErrDeviceUnavailable, closeErr.Text)
			}
			return nil, fmt.Errorf("read chunk: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			// Control/text frames from the bridge carry no media data.
			continue
		}
		return data, nil
	}
}

func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		err = s.conn.Close()
	})
	return err
}
