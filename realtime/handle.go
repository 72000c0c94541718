package realtime

import "rievent_server/store"

// Handle wraps one active change-stream subscription. The registry
// exclusively owns every handle; nothing else holds a reference to the
// underlying stream.
type Handle struct {
	key        string
	collection string
	query      store.Query
	refs       int
	cancel     store.CancelFunc
}

// Key returns the subscription key the handle serves.
func (h *Handle) Key() string {
	return h.key
}

func (h *Handle) stop() {
	if h.cancel != nil {
		h.cancel()
	}
}
