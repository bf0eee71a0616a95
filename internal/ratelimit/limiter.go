// Package ratelimit implements a fixed-window request counter keyed by
// client identity. The counter map is process-local and non-durable; a
// horizontally scaled deployment needs an external shared counter store
// instead, which is out of scope here.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 100
	DefaultWindow      = 15 * time.Minute
)

type record struct {
	count     int
	resetTime time.Time
}

// Result is the outcome of a limit check. Check never fails; the 429-versus-
// proceed decision belongs to the caller.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the whole-second wait hint, set only when denied.
	RetryAfter int
}

// Limiter owns the key→record map. Increments are atomic per key; checks
// never perform I/O.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record

	maxRequests int
	window      time.Duration
	now         func() time.Time

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMaxRequests sets the per-window quota.
func WithMaxRequests(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxRequests = n
		}
	}
}

// WithWindow sets the window length.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithClock overrides the time source, letting tests drive windows
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a limiter. Call Start to run the periodic sweep.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		records:     make(map[string]*record),
		maxRequests: DefaultMaxRequests,
		window:      DefaultWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts a request against the key's window and reports whether it is
// within quota. A fresh window starts on the first request for a key or once
// the previous window has fully elapsed; the quota resets entirely on
// rollover, with no carry-over from an exceeded window.
func (l *Limiter) Check(key string) Result {
	now := l.now()

	l.mu.Lock()
	rec, ok := l.records[key]
	if !ok || !now.Before(rec.resetTime) {
		rec = &record{count: 1, resetTime: now.Add(l.window)}
		l.records[key] = rec
	} else {
		rec.count++
	}
	count := rec.count
	resetTime := rec.resetTime
	l.mu.Unlock()

	res := Result{
		Limit:   l.maxRequests,
		ResetAt: resetTime,
	}
	if count > l.maxRequests {
		res.Allowed = false
		res.Remaining = 0
		res.RetryAfter = int(math.Ceil(resetTime.Sub(now).Seconds()))
		return res
	}
	res.Allowed = true
	res.Remaining = l.maxRequests - count
	return res
}

// Limit returns the configured per-window quota.
func (l *Limiter) Limit() int { return l.maxRequests }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Sweep removes records whose window has already elapsed, bounding memory.
// Keys are snapshotted first so Check calls are not stalled behind the scan;
// re-running after expiry is a no-op.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	keys := make([]string, 0, len(l.records))
	for k := range l.records {
		keys = append(keys, k)
	}
	l.mu.Unlock()

	for _, k := range keys {
		l.mu.Lock()
		if rec, ok := l.records[k]; ok && !now.Before(rec.resetTime) {
			delete(l.records, k)
		}
		l.mu.Unlock()
	}
}

// Start launches the background sweeper. The sweep interval equals the
// window length. Stop terminates it.
func (l *Limiter) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sweepStop != nil {
		return
	}
	l.sweepStop = make(chan struct{})
	l.sweepDone = make(chan struct{})
	go l.sweepLoop(l.sweepStop, l.sweepDone)
}

// Stop halts the background sweeper and waits for it to exit.
func (l *Limiter) Stop() {
	l.mu.Lock()
	stop, done := l.sweepStop, l.sweepDone
	l.sweepStop, l.sweepDone = nil, nil
	l.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (l *Limiter) sweepLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-stop:
			return
		}
	}
}

// size reports the number of live records. Test hook.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
