package engine

import (
	"fmt"
	"sync"

	"studyhall/internal/model"
)

type regKey struct {
	channel string
	typ     model.SessionType
}

// registry owns the set of live actors, indexed by session id and by
// (channel, type). All index mutation happens under the lock so the
// at-most-one-active-session invariant holds under concurrent starts.
type registry struct {
	mu    sync.RWMutex
	byID  map[string]*actor
	byKey map[regKey]*actor
}

func newRegistry() *registry {
	return &registry{
		byID:  make(map[string]*actor),
		byKey: make(map[regKey]*actor),
	}
}

func (r *registry) insert(a *actor) error {
	key := regKey{channel: a.sess.ChannelID, typ: a.sess.Type}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("channel %s already has a %s session: %w", a.sess.ChannelID, a.sess.Type, ErrConflict)
	}
	if _, ok := r.byID[a.sess.ID]; ok {
		// Two live sessions under one id means the mutual exclusion
		// above is broken; refusing to continue beats silent corruption.
		panic("registry invariant violated: duplicate session id " + a.sess.ID)
	}
	r.byID[a.sess.ID] = a
	r.byKey[key] = a
	return nil
}

// remove deregisters a closed actor. Tolerant of repeats so that
// ending a session is idempotent.
func (r *registry) remove(a *actor) {
	key := regKey{channel: a.sess.ChannelID, typ: a.sess.Type}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byID[a.sess.ID]; ok && cur == a {
		delete(r.byID, a.sess.ID)
	}
	if cur, ok := r.byKey[key]; ok && cur == a {
		delete(r.byKey, key)
	}
}

func (r *registry) get(id string) (*actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

func (r *registry) getByKey(channelID string, typ model.SessionType) (*actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byKey[regKey{channel: channelID, typ: typ}]
	return a, ok
}

// listActive returns the live actors for one channel, or all live
// actors when channelID is empty.
func (r *registry) listActive(channelID string) []*actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*actor, 0, len(r.byID))
	for _, a := range r.byID {
		if channelID == "" || a.sess.ChannelID == channelID {
			out = append(out, a)
		}
	}
	return out
}
