// Package stream keeps a best-effort live-update connection to the server's
// event feed and hands received events to a callback.
//
// The feed is advisory: events only prompt a re-sync, they never carry data
// that is written to the store directly. Any failure is logged and followed
// by a fixed delay and a new attempt, until Stop is called.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultRetryDelay is the pause between a disconnect and the next attempt.
	DefaultRetryDelay = 3 * time.Second

	maxErrorBody = 2048
	maxLineSize  = 1 << 20
)

// State of the connection loop.
type State int32

const (
	Idle State = iota
	Connecting
	Streaming
	Disconnected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Disconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Event is one dispatched data line. Name is empty for unnamed events.
type Event struct {
	Name string
	Data string
}

// Executor runs f on the context that owns the event callback.
type Executor func(f func())

type Option func(*Stream)

func WithRetryDelay(d time.Duration) Option {
	return func(s *Stream) { s.retryDelay = d }
}

// WithHTTPClient replaces the default client. Its Timeout must be zero, the
// connection is held open indefinitely.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Stream) { s.http = c }
}

func WithExecutor(e Executor) Option {
	return func(s *Stream) { s.executor = e }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Stream) { s.logger = l }
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Stream) { s.registerer = reg }
}

// Stream is the live-update loop. It is safe for concurrent use.
type Stream struct {
	settings   client.Settings
	http       *http.Client
	logger     logging.Logger
	retryDelay time.Duration
	executor   Executor
	registerer prometheus.Registerer
	metrics    *metrics

	state atomic.Int32
	// dispatching is set while the loop goroutine is inside the executor.
	dispatching atomic.Bool

	mu      sync.Mutex
	handler func(Event)
	cancel  context.CancelFunc
	done    chan struct{}
}

// target is the endpoint and token read by Start on the caller's goroutine.
type target struct {
	endpoint client.Endpoint
	token    string
}

func New(settings client.Settings, opts ...Option) *Stream {
	s := &Stream{
		settings:   settings,
		http:       &http.Client{},
		logger:     logging.Nop(),
		retryDelay: DefaultRetryDelay,
		executor:   func(f func()) { f() },
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "stream")
	s.metrics = newMetrics(s.registerer)
	return s
}

// OnEvent registers the single event callback, replacing any previous one.
func (s *Stream) OnEvent(fn func(Event)) {
	s.mu.Lock()
	s.handler = fn
	s.mu.Unlock()
}

func (s *Stream) State() State {
	return State(s.state.Load())
}

// Start reads the endpoint and token from the settings and launches the
// connection loop with them; the loop itself never touches the settings.
// Calling Start on a running stream does nothing. The loop ends when ctx is
// cancelled or Stop is called; after that Start may be called again and
// picks up changed settings.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		select {
		case <-s.done:
			// The previous loop ended with its parent context.
			s.cancel()
			s.cancel, s.done = nil, nil
		default:
			return nil
		}
	}

	ep, err := s.settings.Endpoint(ctx)
	if err != nil {
		return fmt.Errorf("read endpoint: %w", err)
	}
	token, err := s.settings.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, target{endpoint: ep, token: token}, s.done)
	return nil
}

// Stop cancels the current attempt and waits for the loop to exit. No
// reconnect happens afterwards.
//
// Called while an event is being dispatched, from the callback for example,
// Stop only cancels: the loop exits as soon as the callback returns.
func (s *Stream) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if s.dispatching.Load() {
		return
	}
	<-done
	s.http.CloseIdleConnections()
}

// Done is closed when the current loop exits. It returns nil when the stream
// is not running.
func (s *Stream) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Stream) run(ctx context.Context, tg target, done chan struct{}) {
	defer close(done)
	defer s.state.Store(int32(Idle))

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		s.state.Store(int32(Connecting))
		connID := uuid.NewString()
		log := s.logger.With("connection_id", connID, "attempt", attempt)

		err := s.connect(ctx, tg, connID, log)
		if ctx.Err() != nil {
			log.Debug(ctx, "live updates stopped")
			return
		}

		s.state.Store(int32(Disconnected))
		s.metrics.disconnects.Inc()
		log.Warn(ctx, "live updates disconnected, retrying", "error", err, "retry_in", s.retryDelay)

		timer := time.NewTimer(s.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

var errClosedByServer = errors.New("stream closed by server")

func (s *Stream) connect(ctx context.Context, tg target, connID string, log logging.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BuildURL(tg.endpoint, nil, "events"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(client.RequestIDHeader, connID)
	if tg.token != "" {
		req.Header.Set("Authorization", "Bearer "+tg.token)
	} else {
		log.Warn(ctx, "connecting to live updates without a token")
	}
	// A stream connection is never reused.
	req.Close = true

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error(ctx, "live updates rejected", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	s.state.Store(int32(Streaming))
	s.metrics.connects.Inc()
	log.Info(ctx, "live updates connected")

	return s.read(ctx, resp.Body, log)
}

func (s *Stream) read(ctx context.Context, body io.Reader, log logging.Logger) error {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	var p parser
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		kind, ev := p.feed(sc.Text())
		switch kind {
		case lineComment:
			log.Debug(ctx, "keep-alive comment")
		case lineKeepAlive:
			log.Debug(ctx, "keep-alive event")
		case lineData:
			s.dispatch(ev)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errClosedByServer
}

func (s *Stream) dispatch(ev Event) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()

	s.metrics.events.WithLabelValues(eventLabel(ev.Name)).Inc()
	if h == nil {
		return
	}
	s.dispatching.Store(true)
	defer s.dispatching.Store(false)
	s.executor(func() { h(ev) })
}
