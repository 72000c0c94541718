package socket

import (
	"log"
	"sync"

	"rievent_server/realtime"
	"rievent_server/services"
	"rievent_server/store"

	socketio "github.com/googollee/go-socket.io"
)

// connState tracks which subscription keys a connection holds references to,
// so disconnect releases every one of them.
type connState struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (cs *connState) add(key string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.keys[key] {
		return false
	}
	cs.keys[key] = true
	return true
}

func (cs *connState) remove(key string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if !cs.keys[key] {
		return false
	}
	delete(cs.keys, key)
	return true
}

func (cs *connState) drain() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]string, 0, len(cs.keys))
	for key := range cs.keys {
		out = append(out, key)
	}
	cs.keys = map[string]bool{}
	return out
}

// subscriptionFor maps a watch request to a registry key and its query.
func subscriptionFor(kind, id string) (string, string, store.Query, bool) {
	switch kind {
	case "events":
		key, collection, q := services.PublicEventsSubscription()
		return key, collection, q, true
	case "my-events":
		key, collection, q := services.OwnerEventsSubscription(id)
		return key, collection, q, id != ""
	case "event":
		key, collection, q := services.EventSubscription(id)
		return key, collection, q, id != ""
	case "rsvp":
		key, collection, q := services.RsvpSubscription(id)
		return key, collection, q, id != ""
	case "chat":
		key, collection, q := services.ChatSubscription(id)
		return key, collection, q, id != ""
	case "ratings":
		key, collection, q := services.RatingsSubscription(id)
		return key, collection, q, id != ""
	case "comments":
		key, collection, q := services.CommentsSubscription(id)
		return key, collection, q, id != ""
	default:
		return "", "", store.Query{}, false
	}
}

// NewSocketServer initializes the Socket.IO server bridging the registry to
// clients: every mirror apply is broadcast to the room named after the key.
func NewSocketServer(registry *realtime.Registry) *socketio.Server {
	server := socketio.NewServer(nil)

	// Handle connection events
	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&connState{keys: map[string]bool{}})
		log.Println("✅ Socket connected:", s.ID())
		return nil
	})

	// Handle watch events: pin a subscription and join its room
	server.OnEvent("/", "watch", func(s socketio.Conn, data map[string]string) {
		key, collection, q, ok := subscriptionFor(data["kind"], data["id"])
		if !ok {
			log.Printf("❌ Invalid watch request from %s: %+v", s.ID(), data)
			return
		}
		state := s.Context().(*connState)
		// One registry reference per connection per key: a repeated watch
		// must not take a reference that leave/disconnect cannot release.
		if !state.add(key) {
			return
		}
		if err := registry.Subscribe(key, collection, q); err != nil {
			state.remove(key)
			log.Printf("❌ Failed to subscribe %s: %v", key, err)
			s.Emit("error", map[string]string{"key": key, "error": "subscription failed"})
			return
		}
		s.Join(key)
		log.Printf("👥 Socket %s watching %s", s.ID(), key)
	})

	// Handle leave events: drop the room and release the reference
	server.OnEvent("/", "leave", func(s socketio.Conn, data map[string]string) {
		key, _, _, ok := subscriptionFor(data["kind"], data["id"])
		if !ok {
			return
		}
		state := s.Context().(*connState)
		if state.remove(key) {
			s.Leave(key)
			registry.Unsubscribe(key)
			log.Printf("👋 Socket %s left %s", s.ID(), key)
		}
	})

	// Handle disconnection: release every reference the connection held
	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if state, ok := s.Context().(*connState); ok {
			for _, key := range state.drain() {
				registry.Unsubscribe(key)
			}
		}
		log.Println("❌ Socket disconnected:", s.ID(), reason)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Printf("⚠️ Socket error: %v", err)
	})

	// Fan each mirror apply out to the key's room. Runs on the registry's
	// consumer goroutine.
	registry.OnUpdate(func(key string) {
		slot := registry.Mirror().Get(key)
		payload := map[string]interface{}{"key": key}
		switch slot.State {
		case realtime.SlotKnown:
			payload["state"] = "known"
			payload["snapshot"] = slot.Snapshot
		case realtime.SlotUnknown:
			payload["state"] = "unknown"
		default:
			payload["state"] = "absent"
		}
		server.BroadcastToRoom("/", key, "snapshot", payload)
	})

	return server
}
