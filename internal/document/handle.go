package document

import (
	"context"
	"errors"
	"sync"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "idle"
}

var ErrNotRetryable = errors.New("document load is not in the error state")

// Handle is the tri-state view of one document load. A failed load stays
// failed until the host calls Retry.
type Handle struct {
	mu       sync.Mutex
	loader   *Loader
	source   string
	status   Status
	info     *Info
	err      error
	attempts int
	done     chan struct{}
}

func (h *Handle) Source() string { return h.source }

// State returns the current status together with the result of a settled
// load.
func (h *Handle) State() (Status, *Info, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.info, h.err
}

func (h *Handle) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

// Start begins loading in the background. The returned channel closes once the
// handle has left the loading state. Calling Start on a handle that already
// started returns the existing channel.
func (h *Handle) Start(ctx context.Context) <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusIdle {
		return h.done
	}
	return h.begin(ctx)
}

// Retry restarts a failed load.
func (h *Handle) Retry(ctx context.Context) (<-chan struct{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusError {
		return nil, ErrNotRetryable
	}
	return h.begin(ctx), nil
}

// Wait starts the load if needed and blocks until it settles or ctx ends.
func (h *Handle) Wait(ctx context.Context) (*Info, error) {
	done := h.Start(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	_, info, err := h.State()
	return info, err
}

func (h *Handle) begin(ctx context.Context) <-chan struct{} {
	h.status = StatusLoading
	h.info = nil
	h.err = nil
	h.attempts++
	done := make(chan struct{})
	h.done = done
	go func() {
		info, err := h.loader.Load(ctx, h.source)
		h.mu.Lock()
		if err != nil {
			h.status = StatusError
			h.err = err
		} else {
			h.status = StatusReady
			h.info = info
		}
		h.mu.Unlock()
		close(done)
	}()
	return done
}
