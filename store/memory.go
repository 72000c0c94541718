package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with push-based subscriptions. It backs
// the test suite and local runs without AWS credentials.
type MemoryStore struct {
	schema Schema

	mu      sync.Mutex
	data    map[string]map[string]Document
	subs    map[int]*memorySub
	nextSub int
}

type memorySub struct {
	id         int
	collection string
	q          Query
	fn         SnapshotFunc
}

// NewMemoryStore returns an empty store over the given schema.
func NewMemoryStore(schema Schema) *MemoryStore {
	return &MemoryStore{
		schema: schema,
		data:   map[string]map[string]Document{},
		subs:   map[int]*memorySub{},
	}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string, out interface{}) error {
	m.mu.Lock()
	doc, ok := m.data[collection][key]
	if ok {
		doc = cloneDocument(doc)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return DecodeOne(doc, out)
}

func (m *MemoryStore) Query(ctx context.Context, collection string, q Query, out interface{}) error {
	m.mu.Lock()
	snap := m.evaluate(collection, q)
	m.mu.Unlock()
	return snap.Decode(out)
}

func (m *MemoryStore) Create(ctx context.Context, collection string, item interface{}) (string, error) {
	doc, err := ToDocument(item)
	if err != nil {
		return "", err
	}
	key := uuid.New().String()
	doc[m.schema.KeyField(collection)] = key

	m.mu.Lock()
	m.put(collection, key, doc)
	notify := m.pendingNotifications(collection)
	m.mu.Unlock()
	deliver(notify)
	return key, nil
}

func (m *MemoryStore) CreateIfAbsent(ctx context.Context, collection, key string, item interface{}) error {
	doc, err := ToDocument(item)
	if err != nil {
		return err
	}
	doc[m.schema.KeyField(collection)] = key

	m.mu.Lock()
	if _, exists := m.data[collection][key]; exists {
		m.mu.Unlock()
		return ErrConflict
	}
	m.put(collection, key, doc)
	notify := m.pendingNotifications(collection)
	m.mu.Unlock()
	deliver(notify)
	return nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, key string, item interface{}) error {
	doc, err := ToDocument(item)
	if err != nil {
		return err
	}
	doc[m.schema.KeyField(collection)] = key

	m.mu.Lock()
	m.put(collection, key, doc)
	notify := m.pendingNotifications(collection)
	m.mu.Unlock()
	deliver(notify)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, key string, ops []FieldOp) error {
	m.mu.Lock()
	doc, ok := m.data[collection][key]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	// Mutate a copy so snapshots already handed out stay immutable.
	doc = cloneDocument(doc)
	for _, op := range ops {
		if err := applyOp(doc, op); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.put(collection, key, doc)
	notify := m.pendingNotifications(collection)
	m.mu.Unlock()
	deliver(notify)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	delete(m.data[collection], key)
	notify := m.pendingNotifications(collection)
	m.mu.Unlock()
	deliver(notify)
	return nil
}

func (m *MemoryStore) Subscribe(collection string, q Query, fn SnapshotFunc) (CancelFunc, error) {
	m.mu.Lock()
	m.nextSub++
	sub := &memorySub{id: m.nextSub, collection: collection, q: q, fn: fn}
	m.subs[sub.id] = sub
	initial := m.evaluate(collection, q)
	m.mu.Unlock()

	// Initial delivery happens before Subscribe returns so it can never
	// arrive after, and overwrite, a notification for a later mutation.
	fn(initial, nil)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, sub.id)
			m.mu.Unlock()
		})
	}
	return cancel, nil
}

func (m *MemoryStore) put(collection, key string, doc Document) {
	if m.data[collection] == nil {
		m.data[collection] = map[string]Document{}
	}
	m.data[collection][key] = doc
}

type notification struct {
	fn   SnapshotFunc
	snap Snapshot
}

// pendingNotifications computes, under the lock, the fresh result set for
// every subscriber of the collection.
func (m *MemoryStore) pendingNotifications(collection string) []notification {
	var out []notification
	for _, sub := range m.subs {
		if sub.collection != collection {
			continue
		}
		out = append(out, notification{fn: sub.fn, snap: m.evaluate(collection, sub.q)})
	}
	return out
}

func deliver(notify []notification) {
	for _, n := range notify {
		n.fn(n.snap, nil)
	}
}

// evaluate runs q against the collection. Caller holds the lock.
func (m *MemoryStore) evaluate(collection string, q Query) Snapshot {
	docs := m.data[collection]
	var snap Snapshot
	if q.Key != "" {
		if doc, ok := docs[q.Key]; ok {
			snap = Snapshot{cloneDocument(doc)}
		}
		return snap
	}
	for _, doc := range docs {
		if q.Field != "" && doc[q.Field] != q.Equals {
			continue
		}
		snap = append(snap, cloneDocument(doc))
	}
	if q.OrderBy != "" {
		sort.SliceStable(snap, func(i, j int) bool {
			a := fmt.Sprintf("%v", snap[i][q.OrderBy])
			b := fmt.Sprintf("%v", snap[j][q.OrderBy])
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(snap) > q.Limit {
		snap = snap[:q.Limit]
	}
	return snap
}

func applyOp(doc Document, op FieldOp) error {
	switch op.Kind {
	case OpSet:
		v, err := normalize(op.Value)
		if err != nil {
			return err
		}
		doc[op.Field] = v
	case OpSetMapEntry:
		v, err := normalize(op.Value)
		if err != nil {
			return err
		}
		entries, _ := doc[op.Field].(map[string]interface{})
		if entries == nil {
			entries = map[string]interface{}{}
		}
		entries[op.EntryKey] = v
		doc[op.Field] = entries
	case OpRemoveMapEntry:
		if entries, ok := doc[op.Field].(map[string]interface{}); ok {
			delete(entries, op.EntryKey)
		}
	case OpListAppend:
		v, err := normalize(op.Value)
		if err != nil {
			return err
		}
		list, _ := doc[op.Field].([]interface{})
		doc[op.Field] = append(list, v)
	default:
		return fmt.Errorf("unknown field op kind: %s", op.Kind)
	}
	return nil
}

func normalize(value interface{}) (interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode field value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode field value: %w", err)
	}
	return out, nil
}

func cloneDocument(doc Document) Document {
	out, err := normalize(map[string]interface{}(doc))
	if err != nil {
		return doc
	}
	cloned, ok := out.(map[string]interface{})
	if !ok {
		return doc
	}
	return Document(cloned)
}
