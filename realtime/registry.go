package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rievent_server/store"
)

// dispatch is one pending delivery for a key: either a snapshot or a stream
// error. Only the latest per key is kept (last delivered wins).
type dispatch struct {
	key  string
	snap store.Snapshot
	err  error
}

// Registry manages the live change-stream subscriptions, keyed by entity id
// or query signature. Subscriptions are reference counted: every Subscribe
// must be paired with exactly one eventual Unsubscribe, and at most one
// stream is live per key.
//
// Stream callbacks never touch the mirror directly. They park the latest
// snapshot in a per-key dirty slot and wake the single consumer goroutine
// (Run), which applies it to the mirror and notifies listeners. That keeps
// all mirror mutation and derived-view recomputation on one sequential
// context while the producers stay unblocked.
type Registry struct {
	store  store.Store
	mirror *Mirror

	mu           sync.Mutex
	handles      map[string]*Handle
	dirty        map[string]dispatch
	listeners    map[int]func(key string)
	nextListener int

	wake chan struct{}
}

// NewRegistry returns a registry applying deliveries to mirror.
func NewRegistry(st store.Store, mirror *Mirror) *Registry {
	return &Registry{
		store:     st,
		mirror:    mirror,
		handles:   map[string]*Handle{},
		dirty:     map[string]dispatch{},
		listeners: map[int]func(string){},
		wake:      make(chan struct{}, 1),
	}
}

// Mirror returns the mirror this registry feeds.
func (r *Registry) Mirror() *Mirror {
	return r.mirror
}

// Subscribe registers interest in key. The first subscriber starts a change
// stream for the query; later subscribers just increment the reference
// count, so subscribing an already-subscribed key never opens a second
// stream.
func (r *Registry) Subscribe(key, collection string, q store.Query) error {
	r.mu.Lock()
	if handle, ok := r.handles[key]; ok {
		handle.refs++
		r.mu.Unlock()
		return nil
	}
	handle := &Handle{key: key, collection: collection, query: q, refs: 1}
	r.handles[key] = handle
	r.mu.Unlock()

	cancel, err := r.store.Subscribe(collection, q, func(snap store.Snapshot, streamErr error) {
		r.enqueue(key, snap, streamErr)
	})
	if err != nil {
		r.mu.Lock()
		delete(r.handles, key)
		r.mu.Unlock()
		return fmt.Errorf("failed to subscribe key '%s': %w", key, err)
	}

	r.mu.Lock()
	// Unsubscribe may have raced the stream start; stop the stream instead
	// of leaking it.
	if current, ok := r.handles[key]; !ok || current != handle {
		r.mu.Unlock()
		cancel()
		return nil
	}
	handle.cancel = cancel
	r.mu.Unlock()
	return nil
}

// Unsubscribe releases one reference to key. Dropping the last reference
// cancels the stream and forgets the mirror slot. Unsubscribing a key that
// is not subscribed is a safe no-op.
func (r *Registry) Unsubscribe(key string) {
	r.mu.Lock()
	handle, ok := r.handles[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	handle.refs--
	if handle.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.handles, key)
	delete(r.dirty, key)
	r.mu.Unlock()

	handle.stop()
	r.mirror.Remove(key)
	log.Printf("🔌 Unsubscribed key: %s", key)
}

// Subscribed reports whether key currently has a live subscription.
func (r *Registry) Subscribed(key string) bool {
	r.mu.Lock()
	_, ok := r.handles[key]
	r.mu.Unlock()
	return ok
}

// OnUpdate registers fn to run on the consumer goroutine after each mirror
// apply. The returned func removes the listener.
func (r *Registry) OnUpdate(fn func(key string)) func() {
	r.mu.Lock()
	r.nextListener++
	id := r.nextListener
	r.listeners[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// enqueue is the producer-side handoff. It coalesces to the latest delivery
// per key and never blocks.
func (r *Registry) enqueue(key string, snap store.Snapshot, err error) {
	r.mu.Lock()
	if _, ok := r.handles[key]; !ok {
		// Cancelled while the delivery was in flight; dropping it here keeps
		// stale data from reviving a dead subscription.
		r.mu.Unlock()
		return
	}
	r.dirty[key] = dispatch{key: key, snap: snap, err: err}
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run is the single consumer loop. It drains pending deliveries, applies
// them to the mirror and notifies listeners, until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case <-r.wake:
			r.drain()
		}
	}
}

func (r *Registry) drain() {
	r.mu.Lock()
	pending := r.dirty
	r.dirty = map[string]dispatch{}
	r.mu.Unlock()

	for key, d := range pending {
		r.apply(key, d)
	}
}

func (r *Registry) apply(key string, d dispatch) {
	r.mu.Lock()
	if _, ok := r.handles[key]; !ok {
		r.mu.Unlock()
		return
	}
	listeners := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}

	// The mirror write stays under the lock so an Unsubscribe cannot slip
	// in between the liveness check and the write and have its Remove
	// overtaken by a stale snapshot.
	if d.err != nil {
		log.Printf("⚠️ Stream error for key %s: %v", key, d.err)
		r.mirror.MarkUnknown(key)
	} else {
		r.mirror.Replace(key, d.snap)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
}

func (r *Registry) shutdown() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, handle := range r.handles {
		handles = append(handles, handle)
	}
	r.handles = map[string]*Handle{}
	r.dirty = map[string]dispatch{}
	r.mu.Unlock()

	for _, handle := range handles {
		handle.stop()
	}
}
