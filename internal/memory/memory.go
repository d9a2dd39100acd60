// Package memory provides the long-term memory capability used by agents
// with memory enabled. The real deployment backs this with a vector store;
// the in-process implementations here cover tests and keyword retrieval.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one stored memory snippet.
type Entry struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is the memory capability interface. The conversation manager treats
// it as optional; agents with memory disabled never touch it.
type Store interface {
	// Search returns entries relevant to the query, newest first, up to limit.
	Search(ctx context.Context, agentID, query string, limit int) ([]Entry, error)

	// Store persists a memory snippet for the agent.
	Store(ctx context.Context, agentID, content string, metadata map[string]string) error
}

// NoopStore satisfies Store without retaining anything.
type NoopStore struct{}

// Search always returns no entries.
func (NoopStore) Search(ctx context.Context, agentID, query string, limit int) ([]Entry, error) {
	return nil, nil
}

// Store discards the snippet.
func (NoopStore) Store(ctx context.Context, agentID, content string, metadata map[string]string) error {
	return nil
}

// KeywordStore is a process-local Store with substring-match retrieval.
// Suitable for tests and single-node deployments; swap for a vector index
// when semantic retrieval is needed.
type KeywordStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // agentID -> stored entries, oldest first
}

// NewKeywordStore creates an empty keyword store.
func NewKeywordStore() *KeywordStore {
	return &KeywordStore{entries: make(map[string][]Entry)}
}

// Search matches entries containing any whitespace-separated query term,
// case-insensitive, newest first.
func (s *KeywordStore) Search(ctx context.Context, agentID, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.entries[agentID]
	results := make([]Entry, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(results) < limit; i-- {
		content := strings.ToLower(stored[i].Content)
		for _, term := range terms {
			if strings.Contains(content, term) {
				results = append(results, stored[i])
				break
			}
		}
	}
	return results, nil
}

// Store appends a snippet for the agent.
func (s *KeywordStore) Store(ctx context.Context, agentID, content string, metadata map[string]string) error {
	entry := Entry{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[agentID] = append(s.entries[agentID], entry)
	return nil
}
