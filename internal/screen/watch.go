package screen

import (
	"sync"

	tea "charm.land/bubbletea/v2"
)

// ChangedMsg reports that a hook watched by a screen changed state.
type ChangedMsg struct {
	Source string
}

// Watcher turns a hook's change notifications into Bubble Tea messages.
// Notifications that arrive while one is already pending are coalesced, so
// the screen always renders the latest state.
type Watcher struct {
	source string
	ch     chan struct{}
	done   chan struct{}
	unsub  func()
	once   sync.Once
}

// Watch subscribes to a hook. subscribe is the hook's Subscribe method. The
// first Next fires immediately so a change made before the subscription is
// still rendered.
func Watch(source string, subscribe func(func()) func()) *Watcher {
	w := &Watcher{
		source: source,
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	w.ch <- struct{}{}
	w.unsub = subscribe(func() {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	})
	return w
}

// Next returns a command that waits for the next change. The screen should
// issue it again after handling each ChangedMsg from this source.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.ch:
			return ChangedMsg{Source: w.source}
		case <-w.done:
			return nil
		}
	}
}

// Source returns the name the watcher reports in ChangedMsg.
func (w *Watcher) Source() string {
	return w.source
}

// Stop unsubscribes and releases any pending Next command.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.unsub()
		close(w.done)
	})
}
