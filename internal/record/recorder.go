// Package record bridges engine output events to the slow world:
// MongoDB archival, the Redis leaderboard, and the whiteboard summary
// call. All I/O happens off the actor goroutine.
package record

import (
	"context"
	"time"

	"go.uber.org/zap"

	"studyhall/internal/archive"
	"studyhall/internal/cache"
	"studyhall/internal/content"
	"studyhall/internal/model"
)

// Forwarder rebroadcasts events produced after a session closed (the
// whiteboard summary). Usually the WebSocket hub.
type Forwarder interface {
	Emit(ev model.OutputEvent)
}

type Recorder struct {
	log     *zap.Logger
	archive archive.Repo      // optional
	board   cache.Leaderboard // optional
	adapter content.Adapter   // optional, whiteboard summaries
	forward Forwarder         // optional
	timeout time.Duration
}

func New(log *zap.Logger, repo archive.Repo, board cache.Leaderboard, adapter content.Adapter, forward Forwarder) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		log:     log,
		archive: repo,
		board:   board,
		adapter: adapter,
		forward: forward,
		timeout: 30 * time.Second,
	}
}

// Emit implements engine.Emitter. It never blocks the caller.
func (r *Recorder) Emit(ev model.OutputEvent) {
	switch ev.Type {
	case model.EventScoreUpdated:
		payload, ok := ev.Payload.(model.ScoreUpdatedPayload)
		if !ok || r.board == nil {
			return
		}
		go r.recordScore(ev.ChannelID, payload)
	case model.EventSessionClosed:
		payload, ok := ev.Payload.(model.SessionClosedPayload)
		if !ok {
			return
		}
		go r.recordClose(ev, payload)
	}
}

func (r *Recorder) recordScore(channelID string, payload model.ScoreUpdatedPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.board.AddPoints(ctx, channelID, payload.UserID, payload.Points); err != nil {
		r.log.Warn("leaderboard update failed",
			zap.String("channel_id", channelID),
			zap.String("user_id", payload.UserID),
			zap.Error(err),
		)
	}
}

func (r *Recorder) recordClose(ev model.OutputEvent, payload model.SessionClosedPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	snap := payload.Snapshot
	if r.archive != nil && snap != nil {
		participants := make([]*model.Participant, 0, len(snap.Participants))
		for _, p := range snap.Participants {
			participants = append(participants, p)
		}
		rec := &archive.Record{
			SessionID:    snap.ID,
			ChannelID:    snap.ChannelID,
			Type:         snap.Type,
			Reason:       payload.Reason,
			CreatedAt:    snap.CreatedAt,
			ClosedAt:     time.Now(),
			Phases:       snap.CurrentPhase + 1,
			Participants: participants,
			Content:      snap.Content,
		}
		if err := r.archive.Insert(ctx, rec); err != nil {
			r.log.Warn("session archive failed", zap.String("session_id", snap.ID), zap.Error(err))
		}
	}

	if !payload.SummaryRequested || r.adapter == nil || snap == nil {
		return
	}
	summary, err := r.adapter.Summarize(ctx, snap.Content)
	if err != nil {
		r.log.Warn("whiteboard summary failed", zap.String("session_id", snap.ID), zap.Error(err))
		return
	}
	if r.archive != nil {
		if err := r.archive.SetSummary(ctx, snap.ID, summary); err != nil {
			r.log.Warn("summary archive failed", zap.String("session_id", snap.ID), zap.Error(err))
		}
	}
	if r.forward != nil {
		r.forward.Emit(model.OutputEvent{
			Type:        model.EventSummaryReady,
			SessionID:   snap.ID,
			ChannelID:   snap.ChannelID,
			SessionType: snap.Type,
			Payload:     model.SummaryReadyPayload{Summary: summary},
		})
	}
}
