package query

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/debounce"
	"github.com/abhisek/brainkit/internal/store"
)

// DefaultMaxHistory is the conversation length kept when TutorParams leaves
// MaxHistory unset.
const DefaultMaxHistory = 50

// ErrEmptyMessage is returned by Send for blank messages.
var ErrEmptyMessage = errors.New("query: message is empty")

// TutorAPI is the backend surface used by Tutor.
type TutorAPI interface {
	AskTutor(ctx context.Context, req brainapi.TutorRequest) (*brainapi.TutorResponse, error)
}

// TutorParams configures a Tutor conversation.
type TutorParams struct {
	UserID         string
	CurrentContent string // what the learner is looking at, sent as context
	MaxHistory     int
	Disabled       bool
}

// TutorState is the observable state of a Tutor.
type TutorState struct {
	Messages        []brainapi.Message
	Typing          bool
	Err             error
	SuggestedTopics []string
}

// ErrorMessage returns the error text, or "" if the last reply succeeded.
func (s TutorState) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Tutor holds a capped conversation with the AI tutor.
type Tutor struct {
	notifier
	api        TutorAPI
	logger     *zap.Logger
	clock      debounce.Clock
	transcript store.TranscriptRepo

	mu       sync.Mutex
	params   TutorParams
	messages []brainapi.Message
	pending  int
	err      error
	topics   []string
	closed   bool
	wg       sync.WaitGroup

	// writeMu orders transcript writes against Clear.
	writeMu sync.Mutex

	// gen invalidates replies when the conversation is cleared or closed.
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc

	root context.Context
	stop context.CancelFunc
}

// NewTutor creates an empty conversation. No request is made until Send.
func NewTutor(api TutorAPI, p TutorParams, opts ...Option) *Tutor {
	o := buildOptions(opts)
	if p.MaxHistory <= 0 {
		p.MaxHistory = DefaultMaxHistory
	}
	root, stop := context.WithCancel(o.ctx)
	genCtx, genCancel := context.WithCancel(root)
	return &Tutor{
		api:        api,
		logger:     o.logger.With(zap.String("hook", "tutor")),
		clock:      o.clock,
		transcript: o.transcript,
		params:     p,
		genCtx:     genCtx,
		genCancel:  genCancel,
		root:       root,
		stop:       stop,
	}
}

// State returns a snapshot of the conversation.
func (t *Tutor) State() TutorState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TutorState{
		Messages:        slices.Clone(t.messages),
		Typing:          t.pending > 0,
		Err:             t.err,
		SuggestedTopics: slices.Clone(t.topics),
	}
}

// Messages returns the conversation, oldest first.
func (t *Tutor) Messages() []brainapi.Message {
	return t.State().Messages
}

// Typing reports whether a reply is outstanding.
func (t *Tutor) Typing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending > 0
}

// SetContent changes the content sent as context with later questions.
func (t *Tutor) SetContent(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.CurrentContent = content
}

// Send appends text as a user message and asks the tutor for a reply, which
// is appended when it arrives. Blank text is rejected with ErrEmptyMessage
// before anything changes.
func (t *Tutor) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	t.mu.Lock()
	p := t.params
	if t.closed || p.Disabled || p.UserID == "" {
		t.mu.Unlock()
		return ErrDisabled
	}
	history := slices.Clone(t.messages)
	msg := brainapi.Message{
		ID:        uuid.NewString(),
		Role:      brainapi.RoleUser,
		Content:   text,
		Timestamp: t.clock.Now().UTC(),
	}
	t.messages = capHistory(append(t.messages, msg), p.MaxHistory)
	t.pending++
	t.err = nil
	gen, ctx := t.gen, t.genCtx
	t.wg.Add(1)
	t.mu.Unlock()
	t.notify()

	t.persist(gen, p.UserID, msg)
	go t.ask(ctx, gen, p, history, msg)
	return nil
}

func (t *Tutor) ask(ctx context.Context, gen uint64, p TutorParams, history []brainapi.Message, msg brainapi.Message) {
	defer t.wg.Done()

	resp, err := t.api.AskTutor(ctx, brainapi.TutorRequest{
		UserID:              p.UserID,
		ConversationHistory: history,
		CurrentContent:      p.CurrentContent,
		Question:            msg.Content,
	})

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pending--
	var reply brainapi.Message
	if err != nil {
		t.err = err
	} else {
		reply = brainapi.Message{
			ID:        uuid.NewString(),
			Role:      brainapi.RoleAssistant,
			Content:   resp.Response,
			Timestamp: t.clock.Now().UTC(),
		}
		t.messages = capHistory(append(t.messages, reply), p.MaxHistory)
		t.topics = resp.SuggestedTopics
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Debug("tutor request failed", zap.Error(err))
	} else {
		t.persist(gen, p.UserID, reply)
	}
	t.notify()
}

// Clear empties the conversation and drops outstanding replies.
func (t *Tutor) Clear() {
	t.mu.Lock()
	t.gen++
	t.genCancel()
	t.genCtx, t.genCancel = context.WithCancel(t.root)
	t.messages = nil
	t.topics = nil
	t.pending = 0
	t.err = nil
	userID := t.params.UserID
	t.mu.Unlock()

	if t.transcript != nil && userID != "" {
		t.writeMu.Lock()
		if err := t.transcript.Clear(t.root, userID); err != nil {
			t.logger.Warn("failed to clear transcript", zap.Error(err))
		}
		t.writeMu.Unlock()
	}
	t.notify()
}

// Restore loads the most recent persisted conversation, replacing the
// current one. It is a no-op without a transcript repo.
func (t *Tutor) Restore(ctx context.Context) error {
	t.mu.Lock()
	p := t.params
	t.mu.Unlock()
	if t.transcript == nil || p.UserID == "" {
		return nil
	}

	stored, err := t.transcript.Recent(ctx, p.UserID, p.MaxHistory)
	if err != nil {
		return err
	}
	msgs := make([]brainapi.Message, 0, len(stored))
	for _, m := range stored {
		msgs = append(msgs, brainapi.Message{
			ID:        m.MessageID,
			Role:      brainapi.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	t.mu.Lock()
	t.messages = msgs
	t.mu.Unlock()
	t.notify()
	return nil
}

// persist writes m to the transcript unless the conversation it belongs to
// was cleared or closed in the meantime.
func (t *Tutor) persist(gen uint64, userID string, m brainapi.Message) {
	if t.transcript == nil {
		return
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	current := gen == t.gen
	t.mu.Unlock()
	if !current {
		return
	}
	err := t.transcript.Append(t.root, store.TranscriptMessage{
		UserID:    userID,
		MessageID: m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	})
	if err != nil {
		t.logger.Warn("failed to persist transcript message", zap.Error(err))
	}
}

// Wait blocks until every reply requested before the call has arrived or
// been dropped.
func (t *Tutor) Wait() {
	t.wg.Wait()
}

// Close cancels outstanding replies. Later calls to Send fail.
func (t *Tutor) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.gen++
	t.pending = 0
	t.mu.Unlock()
	t.stop()
	t.notify()
}

// capHistory drops the oldest messages so at most limit remain.
func capHistory(msgs []brainapi.Message, limit int) []brainapi.Message {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	return slices.Clone(msgs[len(msgs)-limit:])
}
