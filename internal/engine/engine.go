// Package engine implements the session orchestration core: a
// registry of live sessions, a per-session actor state machine, a
// replace-not-stack timer service, and the dispatcher that routes
// user actions and timer expirations to the owning session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyhall/internal/model"
)

// Emitter receives the output events the engine produces for the
// transport layer. Implementations must not block; slow consumers
// hand off to their own goroutines.
type Emitter interface {
	Emit(ev model.OutputEvent)
}

// Options tune the engine's background behavior.
type Options struct {
	IdleThreshold   time.Duration // reap sessions with nobody left after this long
	JanitorInterval time.Duration
}

type Engine struct {
	log      *zap.Logger
	reg      *registry
	clock    *Clock
	emitters []Emitter
	opts     Options

	stop     chan struct{}
	stopOnce sync.Once
}

func New(log *zap.Logger, opts Options, emitters ...Emitter) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.IdleThreshold <= 0 {
		opts.IdleThreshold = 10 * time.Minute
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = time.Minute
	}
	e := &Engine{
		log:      log,
		reg:      newRegistry(),
		clock:    NewClock(),
		emitters: emitters,
		opts:     opts,
		stop:     make(chan struct{}),
	}
	go e.janitor()
	return e
}

// StartSession registers a new session for the channel. Content must
// already be generated: adapter calls happen before this point so no
// partially-initialized session is ever visible in the registry.
func (e *Engine) StartSession(ctx context.Context, channelID string, typ model.SessionType, cfg model.SessionConfig, content []model.ContentItem, initiator string) (*model.Session, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required: %w", ErrInvalidAction)
	}
	if !model.ValidType(typ) {
		return nil, fmt.Errorf("unknown session type %q: %w", typ, ErrInvalidAction)
	}
	phases, err := buildPhases(typ, cfg, content)
	if err != nil {
		return nil, err
	}
	profile := profileFor(typ, cfg)

	sess := &model.Session{
		ID:           "s_" + uuid.New().String()[:8],
		ChannelID:    channelID,
		Type:         typ,
		State:        model.StateLobby,
		CreatedAt:    time.Now(),
		Config:       cfg,
		Content:      content,
		Participants: make(map[string]*model.Participant),
	}
	a := newActor(e, sess, phases, profile, initiator)
	if err := e.reg.insert(a); err != nil {
		return nil, err
	}

	// Snapshot before the actor goroutine takes ownership.
	snap := sess.Snapshot()
	go a.run()

	if profile.skipLobby {
		res, err := a.send(ctx, Event{Kind: EventStart, UserID: initiator, Force: true})
		if err != nil {
			return nil, err
		}
		snap = res.Session
	}

	e.log.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("channel_id", channelID),
		zap.String("type", string(typ)),
		zap.Int("phases", len(phases)),
	)
	return snap, nil
}

// Dispatch routes one event to the owning session. Events may target
// a session id or a (channel, type) pair.
func (e *Engine) Dispatch(ctx context.Context, ev Event) (*Result, error) {
	a, err := e.resolve(ev)
	if err != nil {
		return nil, err
	}
	return a.send(ctx, ev)
}

func (e *Engine) resolve(ev Event) (*actor, error) {
	if ev.SessionID != "" {
		if a, ok := e.reg.get(ev.SessionID); ok {
			return a, nil
		}
		return nil, fmt.Errorf("session %s: %w", ev.SessionID, ErrNotFound)
	}
	if a, ok := e.reg.getByKey(ev.ChannelID, ev.Type); ok {
		return a, nil
	}
	return nil, fmt.Errorf("no %s session in channel %s: %w", ev.Type, ev.ChannelID, ErrNotFound)
}

// EndSession force-ends a session. Idempotent: ending an already
// closed or unknown session is a no-op.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	_, err := e.Dispatch(ctx, Event{Kind: EventForceEnd, SessionID: sessionID})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// MarkDisconnected flags a participant as gone without removing their
// score; sessions with nobody left are reaped by the janitor.
func (e *Engine) MarkDisconnected(ctx context.Context, sessionID, userID string) error {
	_, err := e.Dispatch(ctx, Event{Kind: eventLeave, SessionID: sessionID, UserID: userID})
	return err
}

// GetSessionByID returns a snapshot of a live session.
func (e *Engine) GetSessionByID(ctx context.Context, sessionID string) (*model.Session, error) {
	res, err := e.Dispatch(ctx, Event{Kind: eventSnapshot, SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// GetSession returns a snapshot of the live session for a channel and
// type.
func (e *Engine) GetSession(ctx context.Context, channelID string, typ model.SessionType) (*model.Session, error) {
	res, err := e.Dispatch(ctx, Event{Kind: eventSnapshot, ChannelID: channelID, Type: typ})
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// ListActive snapshots the live sessions for a channel (all channels
// when channelID is empty). Diagnostics only.
func (e *Engine) ListActive(ctx context.Context, channelID string) []*model.Session {
	actors := e.reg.listActive(channelID)
	out := make([]*model.Session, 0, len(actors))
	for _, a := range actors {
		res, err := a.send(ctx, Event{Kind: eventSnapshot})
		if err != nil {
			continue // closed between listing and query
		}
		out = append(out, res.Session)
	}
	return out
}

// Close stops the janitor and force-ends every live session.
func (e *Engine) Close() {
	e.stopOnce.Do(func() { close(e.stop) })
	for _, a := range e.reg.listActive("") {
		_, _ = a.send(context.Background(), Event{Kind: EventForceEnd})
	}
}

// injectTimeout delivers a fired timer to its session. Stale
// generations and already-closed sessions drop the event silently.
func (e *Engine) injectTimeout(sessionID string, gen uint64) {
	a, ok := e.reg.get(sessionID)
	if !ok {
		return
	}
	_, _ = a.send(context.Background(), Event{Kind: EventTimeout, SessionID: sessionID, timerGen: gen})
}

func (e *Engine) janitor() {
	ticker := time.NewTicker(e.opts.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, a := range e.reg.listActive("") {
				_, _ = a.send(context.Background(), Event{Kind: EventIdleCheck})
			}
		case <-e.stop:
			return
		}
	}
}

func (e *Engine) emit(ev model.OutputEvent) {
	e.log.Debug("output event",
		zap.String("type", string(ev.Type)),
		zap.String("session_id", ev.SessionID),
		zap.String("channel_id", ev.ChannelID),
	)
	for _, em := range e.emitters {
		em.Emit(ev)
	}
}
