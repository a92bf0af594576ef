// Package chat holds the state of a single chat conversation: the draft,
// the ordered message thread and the pending-reply flag.
//
// A View is owned by one event loop and is not safe for concurrent use.
// Only Exchange.Run may be called from another goroutine.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/geminichat/internal/models"
)

// Backend answers one user message with one reply.
type Backend interface {
	Send(ctx context.Context, message string) (string, error)
}

// View is the conversation state rendered by the terminal UI, the one-shot
// query command and any other front-end.
type View struct {
	backend    Backend
	logger     *zap.Logger
	errorReply string

	draft     string
	messages  []models.Message
	pending   bool
	lastErr   error
	revision  uint64
}

// Option configures a View
type Option func(*View)

// WithLogger sets the logger used for exchange diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithErrorReply overrides the bot text appended when an exchange fails
func WithErrorReply(text string) Option {
	return func(v *View) {
		v.errorReply = text
	}
}

// NewView creates an empty conversation bound to backend
func NewView(backend Backend, opts ...Option) *View {
	v := &View{
		backend:    backend,
		logger:     zap.NewNop(),
		errorReply: models.ErrorReply,
		messages:   []models.Message{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Draft returns the text currently being edited
func (v *View) Draft() string {
	return v.draft
}

// SetDraft replaces the draft text
func (v *View) SetDraft(text string) {
	if text == v.draft {
		return
	}
	v.draft = text
	v.changed()
}

// Messages returns a copy of the conversation in display order
func (v *View) Messages() []models.Message {
	out := make([]models.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

// Len returns the number of messages in the conversation
func (v *View) Len() int {
	return len(v.messages)
}

// Pending reports whether a reply is outstanding
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the cause of the most recent failed exchange, cleared when
// the next exchange begins.
func (v *View) Err() error {
	return v.lastErr
}

// Revision is bumped on every observable change. Renderers compare it with
// the revision they last drew.
func (v *View) Revision() uint64 {
	return v.revision
}

// LastReply returns the text of the most recent bot message
func (v *View) LastReply() (string, bool) {
	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].Role == models.RoleBot {
			return v.messages[i].Text, true
		}
	}
	return "", false
}

// CanSubmit reports whether Submit would accept text
func (v *View) CanSubmit(text string) bool {
	return !v.pending && strings.TrimSpace(text) != ""
}

// Clear empties the conversation. The draft and any pending exchange are
// left alone; a reply that lands after Clear is still appended.
func (v *View) Clear() {
	if len(v.messages) == 0 {
		return
	}
	v.messages = []models.Message{}
	v.lastErr = nil
	v.changed()
}

// Begin performs the synchronous half of a submit: it appends the user
// message, clears the draft and marks the view pending. It returns false
// and changes nothing when text is blank or a reply is already pending.
func (v *View) Begin(text string) (*Exchange, bool) {
	if !v.CanSubmit(text) {
		return nil, false
	}

	v.messages = append(v.messages, models.UserMessage(text))
	v.draft = ""
	v.pending = true
	v.lastErr = nil
	v.changed()

	return &Exchange{
		view:    v,
		backend: v.backend,
		message: text,
		started: time.Now(),
	}, true
}

// Submit runs a whole exchange synchronously. It returns false when text
// was rejected. Whatever the backend does, the view is no longer pending
// when Submit returns.
func (v *View) Submit(ctx context.Context, text string) bool {
	ex, ok := v.Begin(text)
	if !ok {
		return false
	}

	var (
		reply string
		err   error
	)
	defer func() {
		ex.Complete(reply, err)
	}()

	reply, err = ex.Run(ctx)
	return true
}

func (v *View) append(msg models.Message) {
	v.messages = append(v.messages, msg)
}

func (v *View) release() {
	v.pending = false
	v.changed()
}

func (v *View) changed() {
	v.revision++
}

// Exchange is one in-flight request/reply round-trip started by Begin
type Exchange struct {
	view    *View
	backend Backend
	message string
	started time.Time
	done    bool
}

// Message returns the user text sent by this exchange
func (e *Exchange) Message() string {
	return e.message
}

// Run performs the backend call. It is safe to call from a goroutine other
// than the view's owner and converts a backend panic into an error.
func (e *Exchange) Run(ctx context.Context) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = fmt.Errorf("chat backend panicked: %v", r)
		}
	}()

	if e.backend == nil {
		return "", fmt.Errorf("no chat backend configured")
	}
	return e.backend.Send(ctx, e.message)
}

// Complete appends the bot reply, or the fixed error text when err is set,
// and releases the pending flag. Only the first call has any effect.
func (e *Exchange) Complete(reply string, err error) {
	if e.done {
		return
	}
	e.done = true

	v := e.view
	defer v.release()

	took := time.Since(e.started)
	if err != nil {
		v.lastErr = err
		v.append(models.BotMessage(v.errorReply))
		v.logger.Warn("chat exchange failed",
			zap.Error(err),
			zap.Duration("took", took),
		)
		return
	}

	v.append(models.BotMessage(reply))
	v.logger.Debug("chat exchange completed",
		zap.Int("message_len", len(e.message)),
		zap.Int("reply_len", len(reply)),
		zap.Duration("took", took),
	)
}

// Done reports whether Complete has been called
func (e *Exchange) Done() bool {
	return e.done
}
