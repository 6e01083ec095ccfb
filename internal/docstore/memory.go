package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. It is safe for concurrent use and
// is the backend tests and offline tooling run against.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{
			docs:     make(map[string]Document),
			watchers: make(map[string]map[int]func(Document, error)),
		}
		s.collections[name] = c
	}
	return c
}

type memoryCollection struct {
	mu       sync.Mutex
	docs     map[string]Document
	watchers map[string]map[int]func(Document, error)
	nextID   int
}

func (c *memoryCollection) Get(ctx context.Context, id string) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneDocument(doc), nil
}

func (c *memoryCollection) Set(ctx context.Context, id string, doc Document) error {
	c.mu.Lock()
	c.docs[id] = cloneDocument(doc)
	fns := c.watchersFor(id)
	snapshot := cloneDocument(doc)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(cloneDocument(snapshot), nil)
	}
	return nil
}

func (c *memoryCollection) Add(ctx context.Context, doc Document) (string, error) {
	id := uuid.NewString()
	return id, c.Set(ctx, id, doc)
}

func (c *memoryCollection) Update(ctx context.Context, id string, fields Document) error {
	c.mu.Lock()
	doc, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return common.ErrorNotFound
	}
	for k, v := range fields {
		doc[k] = cloneValue(v)
	}
	fns := c.watchersFor(id)
	snapshot := cloneDocument(doc)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(cloneDocument(snapshot), nil)
	}
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	_, existed := c.docs[id]
	delete(c.docs, id)
	var fns []func(Document, error)
	if existed {
		fns = c.watchersFor(id)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(nil, common.ErrorNotFound)
	}
	return nil
}

func (c *memoryCollection) Query(ctx context.Context, field string, equals any) ([]Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result []Snapshot
	for id, doc := range c.docs {
		v, ok := fieldValue(doc, field)
		if !ok {
			continue
		}
		if reflect.DeepEqual(v, equals) {
			result = append(result, Snapshot{ID: id, Doc: cloneDocument(doc)})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (c *memoryCollection) Watch(id string, fn func(Document, error)) (stop func()) {
	c.mu.Lock()
	key := c.nextID
	c.nextID++
	if c.watchers[id] == nil {
		c.watchers[id] = make(map[int]func(Document, error))
	}
	c.watchers[id][key] = fn
	doc, ok := c.docs[id]
	var snapshot Document
	if ok {
		snapshot = cloneDocument(doc)
	}
	c.mu.Unlock()

	// Initial emission with the current state.
	if ok {
		fn(snapshot, nil)
	} else {
		fn(nil, common.ErrorNotFound)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if m := c.watchers[id]; m != nil {
			delete(m, key)
		}
	}
}

// watchersFor must be called with c.mu held.
func (c *memoryCollection) watchersFor(id string) []func(Document, error) {
	m := c.watchers[id]
	if len(m) == 0 {
		return nil
	}
	fns := make([]func(Document, error), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}
