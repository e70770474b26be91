// Package query holds the client-side data hooks: small stateful units that
// load one kind of Brain AI data for a learner, expose loading and error
// state, and notify subscribers whenever that state changes.
//
// Every hook follows the same rules. Activation issues one request unless the
// hook is disabled or its subject is empty. Success replaces the data and
// clears the error. Failure records the error and resets the data to its zero
// value. When requests overlap, only the most recently dispatched one may
// update state; older ones are cancelled and their results dropped.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/debounce"
	"github.com/abhisek/brainkit/internal/store"
)

// ErrDisabled is returned by imperative hook calls when the hook is disabled
// or has no subject.
var ErrDisabled = errors.New("query: hook disabled or missing user")

// State is the observable state of a hook.
type State[T any] struct {
	Data      T
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// ErrorMessage returns the error text, or "" if the last request succeeded.
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Option configures a hook.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	clock      debounce.Clock
	ctx        context.Context
	transcript store.TranscriptRepo
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used for timestamps and debouncing.
func WithClock(c debounce.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithContext sets the parent context of every request the hook issues.
// Cancelling it has the same effect as Close on in-flight requests.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithTranscript persists tutor conversations to repo.
func WithTranscript(repo store.TranscriptRepo) Option {
	return func(o *options) { o.transcript = repo }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  debounce.SystemClock{},
		ctx:    context.Background(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// notifier fans state changes out to subscribers.
type notifier struct {
	subMu sync.Mutex
	subs  map[int]func()
	next  int
}

// Subscribe registers fn to be called after every state change. Callbacks run
// on the goroutine that changed the state and must not block. The returned
// function removes the subscription.
func (n *notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify() {
	n.subMu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// fetcher runs latest-wins requests and owns the resulting State.
type fetcher[T any] struct {
	notifier

	name   string
	logger *zap.Logger
	clock  debounce.Clock

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	root context.Context
	stop context.CancelFunc
}

func newFetcher[T any](name string, o options) *fetcher[T] {
	root, stop := context.WithCancel(o.ctx)
	return &fetcher[T]{
		name:   name,
		logger: o.logger.With(zap.String("hook", name)),
		clock:  o.clock,
		root:   root,
		stop:   stop,
	}
}

// State returns a snapshot of the hook state.
func (f *fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// dispatch starts fn as the latest request, superseding any in flight. It
// reports false if the hook is closed.
func (f *fetcher[T]) dispatch(fn func(ctx context.Context) (T, error)) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	ctx, cancel := context.WithCancel(f.root)
	f.cancel = cancel
	f.state.Loading = true
	f.state.Err = nil
	f.wg.Add(1)
	f.mu.Unlock()
	f.notify()

	go func() {
		defer f.wg.Done()
		defer cancel()

		data, err := fn(ctx)

		f.mu.Lock()
		if seq != f.seq {
			f.mu.Unlock()
			f.logger.Debug("dropping superseded response", zap.Uint64("seq", seq))
			return
		}
		f.cancel = nil
		f.state.Loading = false
		if err != nil {
			var zero T
			f.state.Data = zero
			f.state.Err = err
		} else {
			f.state.Data = data
			f.state.Err = nil
			f.state.UpdatedAt = f.clock.Now()
		}
		f.mu.Unlock()

		if err != nil {
			f.logger.Debug("request failed", zap.Error(err))
		}
		f.notify()
	}()
	return true
}

// abort cancels the in-flight request, if any, and drops its result.
func (f *fetcher[T]) abort() {
	f.mu.Lock()
	changed := f.abortLocked()
	f.mu.Unlock()
	if changed {
		f.notify()
	}
}

func (f *fetcher[T]) abortLocked() bool {
	f.seq++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	changed := f.state.Loading
	f.state.Loading = false
	return changed
}

// reset aborts any request and returns the state to empty.
func (f *fetcher[T]) reset() {
	f.mu.Lock()
	f.abortLocked()
	var zero T
	f.state = State[T]{Data: zero}
	f.mu.Unlock()
	f.notify()
}

// Wait blocks until every request dispatched before the call has finished.
func (f *fetcher[T]) Wait() {
	f.wg.Wait()
}

// Close cancels the in-flight request and stops the hook from issuing new
// ones. State is left as it was.
func (f *fetcher[T]) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.abortLocked()
	f.mu.Unlock()
	f.stop()
}
