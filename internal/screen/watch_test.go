package screen

import (
	"testing"
)

type fakeHook struct {
	fn     func()
	unsubs int
}

func (h *fakeHook) Subscribe(fn func()) func() {
	h.fn = fn
	return func() { h.unsubs++ }
}

func TestWatchFirstNextFiresImmediately(t *testing.T) {
	h := &fakeHook{}
	w := Watch("recs", h.Subscribe)
	defer w.Stop()

	msg := w.Next()()
	changed, ok := msg.(ChangedMsg)
	if !ok {
		t.Fatalf("expected ChangedMsg, got %T", msg)
	}
	if changed.Source != "recs" || w.Source() != "recs" {
		t.Errorf("unexpected source %q", changed.Source)
	}
}

func TestWatchCoalescesNotifications(t *testing.T) {
	h := &fakeHook{}
	w := Watch("recs", h.Subscribe)
	w.Next()()

	h.fn()
	h.fn()
	h.fn()

	if _, ok := w.Next()().(ChangedMsg); !ok {
		t.Fatal("expected a pending change")
	}

	// Nothing is pending now, so Next only returns once the watcher stops.
	w.Stop()
	if msg := w.Next()(); msg != nil {
		t.Errorf("expected nil after Stop, got %#v", msg)
	}
}

func TestWatchStopIsIdempotent(t *testing.T) {
	h := &fakeHook{}
	w := Watch("recs", h.Subscribe)
	w.Stop()
	w.Stop()

	if h.unsubs != 1 {
		t.Errorf("expected one unsubscribe, got %d", h.unsubs)
	}
}
