package capture

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func bridgeServer(t *testing.T, handler http.HandlerFunc) (*Bridge, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewBridge(wsURL, nil), srv.Close
}

func TestBridge_ScreenChunks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	bridge, done := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/screen" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte("chunk-1"))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte("chunk-2"))
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		// Hold the connection open so the close frame is delivered.
		time.Sleep(100 * time.Millisecond)
	})
	defer done()

	stream, err := bridge.AcquireScreen(context.Background())
	if err != nil {
		t.Fatalf("AcquireScreen() error = %v", err)
	}
	defer stream.Close()

	// Text frames are skipped; only binary chunks come through.
	chunk, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if string(chunk) != "chunk-1" {
		t.Errorf("chunk = %q, want chunk-1", chunk)
	}
	if chunk, err = stream.Next(context.Background()); err != nil || string(chunk) != "chunk-2" {
		t.Errorf("Next() = %q, %v, want chunk-2", chunk, err)
	}
	if _, err = stream.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() after close error = %v, want io.EOF", err)
	}
}

func TestBridge_PermissionDenied(t *testing.T) {
	bridge, done := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "capture not granted", http.StatusForbidden)
	})
	defer done()

	_, err := bridge.AcquireMicrophone(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("AcquireMicrophone() error = %v, want ErrPermissionDenied", err)
	}
}

func TestBridge_Unreachable(t *testing.T) {
	bridge := NewBridge("ws://127.0.0.1:1", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := bridge.AcquireScreen(ctx)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("AcquireScreen() error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestBridge_NextHonorsContext(t *testing.T) {
	upgrader := websocket.Upgrader{}
	bridge, done := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Send nothing; the reader must unblock via its context.
		time.Sleep(500 * time.Millisecond)
	})
	defer done()

	stream, err := bridge.AcquireScreen(context.Background())
	if err != nil {
		t.Fatalf("AcquireScreen() error = %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := stream.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Next() error = %v, want deadline exceeded", err)
	}
}
