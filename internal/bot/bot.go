package bot

import (
	"context"
	"strings"
	"time"

	"github.com/pokerlog/telegram-poker-bot/internal/ocr"
	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/pokerlog/telegram-poker-bot/internal/venue"
	"github.com/rs/zerolog/log"
)

// DefaultExternalTimeout bounds every call to a collaborator.
const DefaultExternalTimeout = 8 * time.Second

// TournamentStore persists tournaments and their results.
type TournamentStore interface {
	CreateTournament(ctx context.Context, userID int64, d tournament.Draft) (*tournament.Tournament, error)
	GetTournament(ctx context.Context, id string) (*tournament.Tournament, error)
	ListTournaments(ctx context.Context, userID int64) ([]tournament.Tournament, error)
	ListTournamentsWithoutResult(ctx context.Context, userID int64) ([]tournament.Tournament, error)
	SetTournamentResult(ctx context.Context, id string, r tournament.Result) (*tournament.Tournament, error)
}

// TicketReader recognizes tournament tickets in images.
type TicketReader interface {
	ExtractTicketData(ctx context.Context, imageURL string) (*ocr.Result, error)
}

// Button is an inline button with its callback data.
type Button struct {
	Text string
	Data string
}

// MessageOptions controls how a message is rendered.
type MessageOptions struct {
	Buttons  [][]Button
	Markdown bool
}

// Delivery sends messages to users.
type Delivery interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts MessageOptions) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts MessageOptions) error
	AcknowledgeButton(ctx context.Context, callbackID, text string) error
	ResolveMediaLink(ctx context.Context, fileID string) (string, error)
}

// Deps are the collaborators of the engine. Tickets may be nil, which
// disables ticket recognition. Sessions defaults to an in-memory store.
type Deps struct {
	Tournaments TournamentStore
	Venues      venue.PreferenceStore
	Tickets     TicketReader
	Delivery    Delivery
	Sessions    session.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithExternalTimeout sets the timeout applied to every collaborator call.
func WithExternalTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithWorkerIdleTimeout sets how long a user's worker is kept without
// updates before it is released.
func WithWorkerIdleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.workerIdle = d
		}
	}
}

// Engine is the conversation engine. It interprets incoming updates against
// each user's session and talks to users only through Delivery.
type Engine struct {
	tournaments TournamentStore
	venues      venue.PreferenceStore
	resolver    *venue.Resolver
	tickets     TicketReader
	delivery    Delivery
	sessions    session.Store
	timeout     time.Duration
	workerIdle  time.Duration

	workers *workerPool
}

// New creates an Engine.
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		tournaments: deps.Tournaments,
		venues:      deps.Venues,
		resolver:    venue.NewResolver(deps.Venues),
		tickets:     deps.Tickets,
		delivery:    deps.Delivery,
		sessions:    deps.Sessions,
		timeout:     DefaultExternalTimeout,
		workerIdle:  DefaultWorkerIdleTimeout,
	}
	if e.sessions == nil {
		e.sessions = session.NewMemoryStore()
	}
	for _, opt := range opts {
		opt(e)
	}
	e.workers = newWorkerPool(e)
	e.workers.idleTimeout = e.workerIdle
	return e
}

// HandleIncomingUpdate queues the update on its user's worker and returns
// without waiting, even while that user's earlier updates are still being
// processed. Updates of one user are processed one at a time in the order
// they were queued; other users are not blocked.
func (e *Engine) HandleIncomingUpdate(ctx context.Context, u Update) {
	e.dispatch(ctx, u, false)
}

// HandleIncomingUpdateSync is like HandleIncomingUpdate but waits until the
// update has been processed.
func (e *Engine) HandleIncomingUpdateSync(ctx context.Context, u Update) {
	e.dispatch(ctx, u, true)
}

func (e *Engine) dispatch(ctx context.Context, u Update, sync bool) {
	j := job{ctx: ctx, update: u}
	if sync {
		j.done = make(chan struct{})
	}
	if !e.workers.dispatch(u.UserID, j) {
		log.Warn().Int64("userId", u.UserID).Msg("engine is shut down, dropping update")
		return
	}
	if sync {
		<-j.done
	}
}

// Shutdown stops accepting updates, processes the updates already queued
// and stops all user workers.
func (e *Engine) Shutdown() {
	e.workers.shutdown()
}

// TicketsEnabled reports whether ticket recognition is configured.
func (e *Engine) TicketsEnabled() bool {
	return e.tickets != nil
}

// conversation is the state of one update being processed.
type conversation struct {
	*Engine
	ctx    context.Context
	update Update
	sess   *session.Session
}

// processUpdate is called by the user's worker goroutine. Nothing else
// touches this user's session while it runs.
func (e *Engine) processUpdate(ctx context.Context, u Update) {
	var sess *session.Session
	err := e.external(ctx, "load session", func(ctx context.Context) error {
		var err error
		sess, err = e.sessions.Get(ctx, u.UserID)
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", u.UserID).Msg("failed to load session")
		c := &conversation{Engine: e, ctx: ctx, update: u, sess: session.New()}
		if u.Kind == KindButton {
			c.acknowledge("")
		}
		c.reply(MsgSessionUnavailable)
		return
	}

	c := &conversation{Engine: e, ctx: ctx, update: u, sess: sess}
	log.Debug().
		Int64("userId", u.UserID).
		Str("kind", u.Kind.String()).
		Str("flow", sess.ActiveFlow.String()).
		Msg("processing update")

	switch u.Kind {
	case KindCommand:
		c.handleCommand(u.Payload)
	case KindText:
		if strings.HasPrefix(strings.TrimSpace(u.Payload), "/") {
			c.handleCommand(u.Payload)
		} else {
			c.handleText(u.Payload)
		}
	case KindPhoto, KindDocument:
		c.handleTicketImage()
	case KindButton:
		c.handleButton(u.Payload)
	}

	c.save()
}

func (c *conversation) save() {
	err := c.external(c.ctx, "save session", func(ctx context.Context) error {
		return c.sessions.Set(ctx, c.update.UserID, c.sess)
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", c.update.UserID).Msg("failed to save session")
	}
}

func (c *conversation) send(text string, opts MessageOptions) int {
	var id int
	err := c.external(c.ctx, "send message", func(ctx context.Context) error {
		var err error
		id, err = c.delivery.SendMessage(ctx, c.update.ChatID, text, opts)
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", c.update.UserID).Msg("failed to send reply message")
	}
	return id
}

func (c *conversation) reply(text string, a ...any) int {
	return c.send(formatReplyText(text, a...), MessageOptions{Markdown: true})
}

func (c *conversation) replyWithButtons(buttons [][]Button, text string, a ...any) int {
	return c.send(formatReplyText(text, a...), MessageOptions{Markdown: true, Buttons: buttons})
}

// edit replaces the text of an earlier message and removes its buttons.
// It falls back to a new message when the edit fails.
func (c *conversation) edit(messageID int, text string, a ...any) {
	body := formatReplyText(text, a...)
	if messageID == 0 {
		c.send(body, MessageOptions{Markdown: true})
		return
	}
	err := c.external(c.ctx, "edit message", func(ctx context.Context) error {
		return c.delivery.EditMessage(ctx, c.update.ChatID, messageID, body, MessageOptions{Markdown: true})
	})
	if err != nil {
		log.Warn().Err(err).Int64("userId", c.update.UserID).Int("messageId", messageID).Msg("failed to edit message")
		c.send(body, MessageOptions{Markdown: true})
	}
}

func (c *conversation) acknowledge(text string) {
	if c.update.CallbackID == "" {
		return
	}
	err := c.external(c.ctx, "acknowledge button", func(ctx context.Context) error {
		return c.delivery.AcknowledgeButton(ctx, c.update.CallbackID, text)
	})
	if err != nil {
		log.Warn().Err(err).Int64("userId", c.update.UserID).Msg("failed to acknowledge button")
	}
}

// replyFailure reports a failed external step. When cleared is set the flow
// has been ended because the step was a final commit.
func (c *conversation) replyFailure(err error, action string, cleared bool) {
	log.Error().Err(err).
		Int64("userId", c.update.UserID).
		Str("flow", c.sess.ActiveFlow.String()).
		Bool("cleared", cleared).
		Msgf("failed while %s", action)
	if cleared {
		c.reply(MsgExternalFailureCleared, action)
	} else {
		c.reply(MsgExternalFailure, action)
	}
}
