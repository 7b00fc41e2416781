package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"studyhall/internal/model"
)

// eventSnapshot is an internal event kind used by read paths to get a
// consistent copy of session state without a second synchronization
// mechanism.
const eventSnapshot EventKind = "snapshot"

// eventLeave marks a participant disconnected (the tracker keeps the
// score; the janitor reaps sessions with nobody left).
const eventLeave EventKind = "leave"

type envelope struct {
	ev  Event
	res chan reply
}

type reply struct {
	result *Result
	err    error
}

// actor is the single owner of one session: every event is processed
// one at a time in arrival order on its goroutine. Nothing outside the
// actor mutates the session; readers get snapshots.
type actor struct {
	eng       *Engine
	sess      *model.Session
	phases    []model.PhaseDefinition
	profile   typeProfile
	initiator string

	events chan envelope
	done   chan struct{}

	timerGen     uint64
	phaseStart   time.Time
	pausedRemain time.Duration
	lastActivity time.Time
	joinOrder    []string
	acted        map[string]bool // users who answered/marked in the current phase
	revealed     bool
}

func newActor(eng *Engine, sess *model.Session, phases []model.PhaseDefinition, profile typeProfile, initiator string) *actor {
	return &actor{
		eng:          eng,
		sess:         sess,
		phases:       phases,
		profile:      profile,
		initiator:    initiator,
		events:       make(chan envelope),
		done:         make(chan struct{}),
		lastActivity: sess.CreatedAt,
		acted:        make(map[string]bool),
	}
}

// send delivers one event and waits for the actor's reply. A closed
// session answers ErrNotFound; in-flight events for a session that
// closes while they wait become no-ops the same way.
func (a *actor) send(ctx context.Context, ev Event) (*Result, error) {
	env := envelope{ev: ev, res: make(chan reply, 1)}
	select {
	case a.events <- env:
	case <-a.done:
		return nil, ErrNotFound
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-env.res:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *actor) run() {
	for a.sess.State != model.StateClosed {
		env := <-a.events
		res, err := a.handle(env.ev)
		env.res <- reply{result: res, err: err}
	}
	// done is closed by now; any sender that raced the close either
	// lands here or takes the done branch in send.
	for {
		select {
		case env := <-a.events:
			env.res <- reply{err: ErrNotFound}
		default:
			return
		}
	}
}

func (a *actor) handle(ev Event) (*Result, error) {
	var err error
	switch ev.Kind {
	case eventSnapshot:
		return &Result{Session: a.sess.Snapshot()}, nil
	case EventJoin:
		err = a.join(ev)
	case eventLeave:
		err = a.leave(ev)
	case EventStart:
		err = a.start(ev)
	case EventAction:
		return a.action(ev)
	case EventAdvance:
		err = a.advance()
	case EventPause:
		err = a.pause()
	case EventResume:
		err = a.resume()
	case EventForceEnd:
		a.close("force_end")
	case EventTimeout:
		a.timeout(ev.timerGen)
	case EventIdleCheck:
		a.idleCheck()
	default:
		err = fmt.Errorf("unknown event kind %q: %w", ev.Kind, ErrInvalidAction)
	}
	if err != nil {
		a.rejected(ev.UserID, err)
		return nil, err
	}
	return &Result{Session: a.sess.Snapshot()}, nil
}

// rejected emits the action_rejected output for user-visible refusals.
// State is untouched on every error path.
func (a *actor) rejected(userID string, err error) {
	if errors.Is(err, ErrInvalidAction) || errors.Is(err, ErrDuplicateAction) {
		a.emit(model.EventActionRejected, model.ActionRejectedPayload{UserID: userID, Reason: err.Error()})
	}
}

func (a *actor) join(ev Event) error {
	if a.sess.State != model.StateLobby {
		return fmt.Errorf("join is only valid in the lobby: %w", ErrInvalidAction)
	}
	if _, ok := a.sess.Participants[ev.UserID]; ok {
		return fmt.Errorf("user %s already joined: %w", ev.UserID, ErrDuplicateAction)
	}
	now := time.Now()
	a.sess.Participants[ev.UserID] = &model.Participant{
		UserID:       ev.UserID,
		JoinedAt:     now,
		LastActionAt: now,
		Status:       model.ParticipantActive,
	}
	a.joinOrder = append(a.joinOrder, ev.UserID)
	a.lastActivity = now
	return nil
}

func (a *actor) leave(ev Event) error {
	p, ok := a.sess.Participants[ev.UserID]
	if !ok {
		return fmt.Errorf("user %s is not a participant: %w", ev.UserID, ErrInvalidAction)
	}
	p.Status = model.ParticipantDisconnected
	return nil
}

func (a *actor) start(ev Event) error {
	if a.sess.State != model.StateLobby {
		return fmt.Errorf("session is not in the lobby: %w", ErrInvalidAction)
	}
	if a.activeCount() < a.profile.minParticipants {
		if !(ev.Force && ev.UserID == a.initiator) {
			return fmt.Errorf("need %d participants to start: %w", a.profile.minParticipants, ErrInvalidAction)
		}
	}
	a.enterPhase(0)
	return nil
}

func (a *actor) enterPhase(i int) {
	now := time.Now()
	a.sess.State = model.StateActive
	a.sess.CurrentPhase = i
	a.acted = make(map[string]bool)
	a.revealed = false
	a.phaseStart = now
	a.pausedRemain = 0

	ph := a.phases[i]
	if ph.Timed() {
		deadline := now.Add(ph.Duration)
		a.sess.PhaseDeadline = &deadline
		a.timerGen = a.eng.clock.Schedule(a.sess.ID, ph.Duration, a.fireTimeout)
	} else {
		a.sess.PhaseDeadline = nil
		a.cancelTimer()
	}
	a.announce(ph)
}

func (a *actor) fireTimeout(gen uint64) {
	a.eng.injectTimeout(a.sess.ID, gen)
}

func (a *actor) cancelTimer() {
	a.eng.clock.Cancel(a.sess.ID)
	a.timerGen = 0
}

func (a *actor) announce(ph model.PhaseDefinition) {
	payload := model.PhaseAnnouncedPayload{
		Phase:       a.sess.CurrentPhase,
		Name:        ph.Name,
		DurationSec: int(ph.Duration / time.Second),
	}
	switch a.sess.Type {
	case model.SessionQuiz:
		item := a.sess.Content[a.sess.CurrentPhase]
		payload.Prompt = item.Prompt
		payload.Choices = item.Choices
	case model.SessionDebate:
		payload.Speaker = ph.Speaker
		payload.SpeakerUser = a.speakerFor(ph.Speaker)
		if len(a.sess.Content) > 0 {
			payload.Prompt = a.sess.Content[0].Prompt
		}
	}
	a.emit(model.EventPhaseAnnounced, payload)
}

// speakerFor resolves a debate slot label to a user: the first joiner
// argues proponent, the second opponent. Shared-floor slots resolve to
// nobody.
func (a *actor) speakerFor(label string) string {
	switch label {
	case "proponent":
		if len(a.joinOrder) > 0 {
			return a.joinOrder[0]
		}
	case "opponent":
		if len(a.joinOrder) > 1 {
			return a.joinOrder[1]
		}
	}
	return ""
}

func (a *actor) timeout(gen uint64) {
	if gen == 0 || gen != a.timerGen {
		return // stale timer; a newer schedule or a cancel won the race
	}
	if a.sess.State != model.StateActive {
		return
	}
	a.timerGen = 0
	if a.phases[a.sess.CurrentPhase].OnTimeout == model.EffectRevealAnswer && !a.revealed {
		a.reveal()
	}
	a.advanceLocked()
}

func (a *actor) advance() error {
	if a.sess.State != model.StateActive {
		return fmt.Errorf("session is not active: %w", ErrInvalidAction)
	}
	a.advanceLocked()
	return nil
}

func (a *actor) advanceLocked() {
	a.cancelTimer()
	next := a.sess.CurrentPhase + 1
	if next >= len(a.phases) {
		a.close("completed")
		return
	}
	a.enterPhase(next)
}

func (a *actor) pause() error {
	if a.sess.State != model.StateActive {
		return fmt.Errorf("session is not active: %w", ErrInvalidAction)
	}
	if a.sess.Type == model.SessionQuiz {
		return fmt.Errorf("quiz sessions cannot pause: %w", ErrInvalidAction)
	}
	if a.sess.PhaseDeadline != nil {
		remain := time.Until(*a.sess.PhaseDeadline)
		if remain < 0 {
			remain = 0
		}
		a.pausedRemain = remain
		a.sess.PhaseDeadline = nil
	}
	a.cancelTimer()
	a.sess.State = model.StatePaused
	a.lastActivity = time.Now()
	return nil
}

func (a *actor) resume() error {
	if a.sess.State != model.StatePaused {
		return fmt.Errorf("session is not paused: %w", ErrInvalidAction)
	}
	a.sess.State = model.StateActive
	a.lastActivity = time.Now()
	if a.phases[a.sess.CurrentPhase].Timed() {
		if a.pausedRemain <= 0 {
			a.advanceLocked()
			return nil
		}
		deadline := time.Now().Add(a.pausedRemain)
		a.sess.PhaseDeadline = &deadline
		a.timerGen = a.eng.clock.Schedule(a.sess.ID, a.pausedRemain, a.fireTimeout)
		a.pausedRemain = 0
	}
	return nil
}

func (a *actor) action(ev Event) (*Result, error) {
	if a.sess.State != model.StateActive {
		err := fmt.Errorf("session is not active: %w", ErrInvalidAction)
		a.rejected(ev.UserID, err)
		return nil, err
	}
	ph := a.phases[a.sess.CurrentPhase]
	if !ph.Allows(ev.Action) {
		err := fmt.Errorf("action %s not allowed in phase %s: %w", ev.Action, ph.Name, ErrInvalidAction)
		a.rejected(ev.UserID, err)
		return nil, err
	}

	var res *Result
	var err error
	switch ev.Action {
	case model.ActionSubmitAnswer:
		res, err = a.submitAnswer(ev, ph)
	case model.ActionControl:
		res, err = a.control(ev)
	case model.ActionAddImage:
		res, err = a.addImage(ev)
	default:
		err = fmt.Errorf("unknown action %q: %w", ev.Action, ErrInvalidAction)
	}
	if err != nil {
		a.rejected(ev.UserID, err)
		return nil, err
	}
	return res, nil
}

func (a *actor) submitAnswer(ev Event, ph model.PhaseDefinition) (*Result, error) {
	p, ok := a.sess.Participants[ev.UserID]
	if !ok {
		return nil, fmt.Errorf("user %s is not a participant: %w", ev.UserID, ErrInvalidAction)
	}
	now := time.Now()
	if a.sess.PhaseDeadline != nil && now.After(*a.sess.PhaseDeadline) {
		return nil, fmt.Errorf("answer submitted after the deadline: %w", ErrInvalidAction)
	}
	if a.acted[ev.UserID] {
		return nil, fmt.Errorf("user %s already answered this question: %w", ev.UserID, ErrDuplicateAction)
	}

	item := a.sess.Content[a.sess.CurrentPhase]
	correct := ev.Choice >= 0 && ev.Choice == item.CorrectIndex
	points := 0
	if correct {
		base := a.sess.Config.BasePoints
		points = score(base, now.Sub(a.phaseStart), ph.Duration)
		p.Score += points
	}

	a.acted[ev.UserID] = true
	p.Answers = append(p.Answers, model.Answer{
		Phase:       a.sess.CurrentPhase,
		Choice:      ev.Choice,
		Correct:     correct,
		Points:      points,
		SubmittedAt: now,
	})
	p.LastActionAt = now
	a.lastActivity = now

	if correct {
		a.emit(model.EventScoreUpdated, model.ScoreUpdatedPayload{UserID: ev.UserID, Points: points, Total: p.Score})
	}

	res := &Result{Points: points, Correct: correct}
	if a.everyoneActed() {
		// Completion rule: all active participants answered, no need
		// to wait out the clock.
		if !a.revealed {
			a.reveal()
		}
		a.advanceLocked()
	}
	res.Session = a.sess.Snapshot()
	return res, nil
}

func (a *actor) control(ev Event) (*Result, error) {
	now := time.Now()
	a.lastActivity = now

	switch ev.Control {
	case ControlShowAnswer:
		if a.revealed {
			return nil, fmt.Errorf("answer already revealed: %w", ErrDuplicateAction)
		}
		a.reveal()
	case ControlNext:
		a.advanceLocked()
	case ControlMarkCorrect, ControlMarkIncorrect:
		if a.sess.Config.Mode != "flashcard" {
			return nil, fmt.Errorf("marking is only valid in flashcard mode: %w", ErrInvalidAction)
		}
		p, ok := a.sess.Participants[ev.UserID]
		if !ok {
			return nil, fmt.Errorf("user %s is not a participant: %w", ev.UserID, ErrInvalidAction)
		}
		if a.acted[ev.UserID] {
			return nil, fmt.Errorf("user %s already marked this card: %w", ev.UserID, ErrDuplicateAction)
		}
		correct := ev.Control == ControlMarkCorrect
		points := 0
		if correct {
			points = flashcardPoint
			p.Score += points
		}
		a.acted[ev.UserID] = true
		p.Answers = append(p.Answers, model.Answer{
			Phase:       a.sess.CurrentPhase,
			Choice:      -1,
			Correct:     correct,
			Points:      points,
			SubmittedAt: now,
		})
		p.LastActionAt = now
		if correct {
			a.emit(model.EventScoreUpdated, model.ScoreUpdatedPayload{UserID: ev.UserID, Points: points, Total: p.Score})
		}
	case ControlEnd:
		a.close("ended")
	default:
		return nil, fmt.Errorf("unknown control %q: %w", ev.Control, ErrInvalidAction)
	}
	return &Result{Session: a.sess.Snapshot()}, nil
}

func (a *actor) reveal() {
	item := a.sess.Content[a.sess.CurrentPhase]
	a.revealed = true
	payload := model.AnswerRevealedPayload{
		Phase:        a.sess.CurrentPhase,
		CorrectIndex: item.CorrectIndex,
		Back:         item.Back,
	}
	if item.CorrectIndex >= 0 && item.CorrectIndex < len(item.Choices) {
		payload.CorrectChoice = item.Choices[item.CorrectIndex]
	}
	a.emit(model.EventAnswerRevealed, payload)
}

func (a *actor) addImage(ev Event) (*Result, error) {
	now := time.Now()
	a.sess.Content = append(a.sess.Content, model.ContentItem{
		Kind:    model.ContentNote,
		Text:    ev.Text,
		AddedBy: ev.UserID,
		AddedAt: now,
	})
	// Whiteboards have no lobby; contributors become participants on
	// their first capture.
	p, ok := a.sess.Participants[ev.UserID]
	if !ok {
		p = &model.Participant{UserID: ev.UserID, JoinedAt: now, Status: model.ParticipantActive}
		a.sess.Participants[ev.UserID] = p
		a.joinOrder = append(a.joinOrder, ev.UserID)
	}
	p.LastActionAt = now
	a.lastActivity = now
	return &Result{Session: a.sess.Snapshot()}, nil
}

// activeCount counts the participants still connected. The start gate
// uses it so joiners who left do not satisfy the minimum.
func (a *actor) activeCount() int {
	n := 0
	for _, p := range a.sess.Participants {
		if p.Status == model.ParticipantActive {
			n++
		}
	}
	return n
}

// everyoneActed reports whether every active participant has answered
// the current phase. An empty roster never completes a phase early.
func (a *actor) everyoneActed() bool {
	active := 0
	for id, p := range a.sess.Participants {
		if p.Status != model.ParticipantActive {
			continue
		}
		active++
		if !a.acted[id] {
			return false
		}
	}
	return active > 0
}

func (a *actor) idleCheck() {
	for _, p := range a.sess.Participants {
		if p.Status == model.ParticipantActive {
			return
		}
	}
	if time.Since(a.lastActivity) >= a.eng.opts.IdleThreshold {
		a.close("idle")
	}
}

func (a *actor) close(reason string) {
	if a.sess.State == model.StateClosed {
		return
	}
	a.cancelTimer()
	a.sess.State = model.StateClosed
	a.sess.PhaseDeadline = nil

	scores := make([]model.ScoreEntry, 0, len(a.sess.Participants))
	for _, p := range a.sess.Participants {
		scores = append(scores, model.ScoreEntry{UserID: p.UserID, Score: p.Score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].UserID < scores[j].UserID
	})

	a.emit(model.EventSessionClosed, model.SessionClosedPayload{
		Reason:           reason,
		FinalScores:      scores,
		SummaryRequested: a.sess.Type == model.SessionWhiteboard,
		Snapshot:         a.sess.Snapshot(),
	})

	a.eng.reg.remove(a)
	close(a.done)
}

func (a *actor) emit(typ model.OutputType, payload interface{}) {
	a.eng.emit(model.OutputEvent{
		Type:        typ,
		SessionID:   a.sess.ID,
		ChannelID:   a.sess.ChannelID,
		SessionType: a.sess.Type,
		Payload:     payload,
	})
}
