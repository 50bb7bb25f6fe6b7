package capture

import "sync"

// Payload is the in-memory PayloadRef implementation backing captured
// artifacts. Release is explicit and deterministic; after Release the
// bytes are gone and Bytes fails.
type Payload struct {
	mu       sync.Mutex
	data     []byte
	mime     string
	released bool
}

// NewPayload wraps raw bytes as an owned payload. The payload takes
// ownership of data; callers must not reuse the slice.
func NewPayload(data []byte, mime string) *Payload {
	return &Payload{data: data, mime: mime}
}

// Bytes returns the payload bytes, or ErrPayloadReleased after Release.
func (p *Payload) Bytes() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil, ErrPayloadReleased
	}
	return p.data, nil
}

// MIME reports the payload media type.
func (p *Payload) MIME() string {
	return p.mime
}

// Release frees the payload bytes. Safe to call multiple times.
func (p *Payload) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	p.released = true
}

// Released reports whether Release has been called.
func (p *Payload) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
