// Package host provides the runtime collaborators an element needs: a
// "next visual frame" primitive, an in-memory node that stores attributes
// and dispatches events, and a mount point for rendered output.
//
// Two frame strategies are provided. ManualFrames queues callbacks until the
// caller flushes them, which makes update passes fully deterministic in
// tests. Loop owns a goroutine that runs posted tasks and frame callbacks in
// FIFO order on a fixed tick, the way a UI thread would.
package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Frames schedules a callback for the next visual frame. The callback must
// run later than the call to RequestFrame, never synchronously inside it.
type Frames interface {
	RequestFrame(fn func())
}

// ManualFrames collects frame callbacks until Flush is called.
// All methods are safe for concurrent use.
type ManualFrames struct {
	mu     sync.Mutex
	queue  []func()
	frames int
}

func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

func (m *ManualFrames) RequestFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *ManualFrames) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Frames returns how many frames have been flushed.
func (m *ManualFrames) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Flush runs one frame: every callback requested before Flush was called.
// Callbacks requested while the frame runs wait for the next Flush.
// It returns the number of callbacks run.
func (m *ManualFrames) Flush() int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.frames++
	m.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// FlushAll runs frames until no callbacks remain or max frames have run.
// It returns the number of frames flushed.
func (m *ManualFrames) FlushAll(max int) int {
	n := 0
	for n < max && m.Pending() > 0 {
		m.Flush()
		n++
	}
	return n
}

var ErrLoopClosed = errors.New("host: loop closed")

// Loop is a single goroutine event loop. Tasks posted with Post or Do run in
// FIFO order; frame callbacks run together once per tick. Everything an
// element does happens on this goroutine.
type Loop struct {
	interval time.Duration
	logger   *slog.Logger

	tasks  chan func()
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	frames []func()
	ticks  int
}

type LoopOption func(*Loop)

func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16667 * time.Microsecond

func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		interval: DefaultFrameInterval,
		logger:   slog.Default(),
		tasks:    make(chan func(), 256),
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives the loop until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.Close()

	l.logger.Debug("loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closed:
			return nil
		case task := <-l.tasks:
			task()
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	l.ticks++
	l.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
}

// RequestFrame queues fn for the next tick. Safe to call from any goroutine.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames = append(l.frames, fn)
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	select {
	case <-l.closed:
		return ErrLoopClosed
	default:
	}
	select {
	case <-l.closed:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- fn:
		return nil
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
// It must not be called from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	if err := l.Post(ctx, func() { done <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-l.closed:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ticks returns how many frames the loop has run.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.closed)
	})
}
