package character

import "sync"

// DraftStore keeps unsaved form text keyed by character id. Writes are
// best effort; a lost draft is an inconvenience, not an error.
type DraftStore interface {
	SaveDraft(characterID string, text string)
	LoadDraft(characterID string) (string, bool)
	ClearDraft(characterID string)
}

type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]string
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]string)}
}

func (s *MemoryDraftStore) SaveDraft(characterID string, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[characterID] = text
}

func (s *MemoryDraftStore) LoadDraft(characterID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.drafts[characterID]
	return text, ok
}

func (s *MemoryDraftStore) ClearDraft(characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, characterID)
}
