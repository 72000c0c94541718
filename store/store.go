package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a keyed read finds no item.
var ErrNotFound = errors.New("item not found")

// ErrConflict is returned by CreateIfAbsent when the key is already taken.
var ErrConflict = errors.New("item already exists")

// Document is one remote record, decoded to plain fields.
type Document map[string]interface{}

// Snapshot is the full current result set of a query, delivered whole on
// every relevant change.
type Snapshot []Document

// Query selects documents within a collection. Either Key (a single keyed
// document) or Field/Equals (an equality predicate, empty Field = whole
// collection) is used, never both.
type Query struct {
	Key        string
	Field      string
	Equals     interface{}
	OrderBy    string
	Descending bool
	Limit      int
}

// FieldOpKind enumerates the atomic update primitives.
type FieldOpKind string

const (
	OpSet            FieldOpKind = "set"
	OpSetMapEntry    FieldOpKind = "set_map_entry"
	OpRemoveMapEntry FieldOpKind = "remove_map_entry"
	OpListAppend     FieldOpKind = "list_append"
)

// FieldOp is one piece of an atomic multi-field update. All ops passed to a
// single Update call are applied as one request.
type FieldOp struct {
	Kind     FieldOpKind
	Field    string
	EntryKey string
	Value    interface{}
}

// SnapshotFunc receives either the full current result set or a stream error.
type SnapshotFunc func(snap Snapshot, err error)

// CancelFunc stops a subscription. Safe to call more than once.
type CancelFunc func()

// Store is the remote document-store capability this layer is built over.
type Store interface {
	// Get fetches a single document by key; ErrNotFound if absent.
	Get(ctx context.Context, collection, key string, out interface{}) error
	// Query fetches the current result set for q into out (a pointer to a
	// slice of structs).
	Query(ctx context.Context, collection string, q Query, out interface{}) error
	// Create writes item under a store-assigned key, stamps that key into the
	// collection's key field and returns it.
	Create(ctx context.Context, collection string, item interface{}) (string, error)
	// CreateIfAbsent writes item under key only if the key is free;
	// ErrConflict otherwise. First writer wins.
	CreateIfAbsent(ctx context.Context, collection, key string, item interface{}) error
	// Set writes item under key, replacing any previous value.
	Set(ctx context.Context, collection, key string, item interface{}) error
	// Update applies all ops to the document at key as one atomic request.
	Update(ctx context.Context, collection, key string, ops []FieldOp) error
	// Delete removes the document at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, collection, key string) error
	// Subscribe delivers the full current result set for q on every relevant
	// change until the returned CancelFunc is called. Delivery happens on the
	// store's own goroutines; callbacks must not block.
	Subscribe(collection string, q Query, fn SnapshotFunc) (CancelFunc, error)
}

// Decode unmarshals the snapshot into out, a pointer to a slice of structs.
func (s Snapshot) Decode(out interface{}) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return nil
}

// DecodeOne unmarshals a single document into out, a pointer to a struct.
func DecodeOne(doc Document, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// ToDocument converts a struct into a Document through its json tags.
func ToDocument(item interface{}) (Document, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return doc, nil
}
