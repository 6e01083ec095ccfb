package docstore

import (
	"context"
	"strings"
)

// Collection names used across arthub.
const (
	CollectionUsers      = "users"
	CollectionCharacters = "characters"
	CollectionShares     = "shares"
)

// Document is the schemaless payload stored per id. Nested objects are
// map[string]any, lists are []any or typed slices as stored.
type Document = map[string]any

// Snapshot pairs a document with its id, as returned by Query.
type Snapshot struct {
	ID  string
	Doc Document
}

// Store gives access to named collections.
type Store interface {
	Collection(name string) Collection
}

// Collection describes the narrow document operations the workflows
// consume. Get returns common.ErrorNotFound for a missing id; Update
// fails with common.ErrorNotFound rather than creating the document;
// Delete of a missing id is a no-op.
type Collection interface {
	// Get returns the document stored under id.
	Get(ctx context.Context, id string) (Document, error)

	// Set creates or fully replaces the document under id.
	Set(ctx context.Context, id string, doc Document) error

	// Add stores doc under a store-generated id and returns that id.
	Add(ctx context.Context, doc Document) (string, error)

	// Update merges the given top-level fields into an existing document.
	Update(ctx context.Context, id string, fields Document) error

	// Delete removes the document under id, if present.
	Delete(ctx context.Context, id string) error

	// Query returns every document whose field (dotted path, e.g.
	// "roles.owner") equals the given value.
	Query(ctx context.Context, field string, equals any) ([]Snapshot, error)

	// Watch subscribes fn to the document under id. fn is called once with
	// the current state (or common.ErrorNotFound), then again after each
	// change. The returned stop function cancels the subscription.
	Watch(id string, fn func(Document, error)) (stop func())
}

// fieldValue resolves a dotted path inside a document. The second return
// is false when any path segment is missing or not an object.
func fieldValue(doc Document, field string) (any, bool) {
	parts := strings.Split(field, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// cloneDocument makes a deep copy so callers can never mutate stored
// state through a returned document.
func cloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
