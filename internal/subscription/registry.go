// Package subscription implements the SubscriptionRegistry of spec §4.7: a
// concurrent Subscription -> Set<SessionId> mapping guarded by a single
// readers-writer lock, in the style of the teacher family's
// invoice-subscriber bookkeeping (hodl subscriber maps keyed and cloned
// under a single RWMutex).
package subscription

import (
	"sync"

	"github.com/anypayx/hub/internal/store"
)

// Registry tracks which sessions are subscribed to which topics.
type Registry struct {
	mu   sync.RWMutex
	subs map[store.Subscription]map[string]struct{}
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{subs: make(map[store.Subscription]map[string]struct{})}
}

// Subscribe registers sessionID under (subType, id), creating the set on
// first subscriber.
func (r *Registry) Subscribe(sessionID, subType, id string) {
	sub := store.Subscription{Type: subType, ID: id}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[sub]
	if !ok {
		set = make(map[string]struct{})
		r.subs[sub] = set
	}
	set[sessionID] = struct{}{}
}

// Unsubscribe removes sessionID from (subType, id), dropping the entry
// entirely once its set is empty.
func (r *Registry) Unsubscribe(sessionID, subType, id string) {
	sub := store.Subscription{Type: subType, ID: id}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[sub]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.subs, sub)
	}
}

// UnsubscribeAll removes sessionID from every subscription it holds, used
// on session termination per spec §4.8.
func (r *Registry) UnsubscribeAll(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub, set := range r.subs {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.subs, sub)
		}
	}
}

// SubscribersOf returns a cloned snapshot of the session ids subscribed to
// sub, safe to iterate without holding the registry's lock.
func (r *Registry) SubscribersOf(sub store.Subscription) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.subs[sub]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
