// Package rag provides a local vector index for retrieval-augmented
// generation, backed by chromem-go, plus the rag.index and rag.query
// tools exposing it to the agent.
package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// EmbeddingFunc converts text into an embedding vector.
type EmbeddingFunc = chromem.EmbeddingFunc

// OpenAIEmbedding returns an EmbeddingFunc backed by the OpenAI
// text-embedding-3-small model.
func OpenAIEmbedding(apiKey string) EmbeddingFunc {
	return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small)
}

// Chunk is one retrieved piece of indexed text.
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Index is a single named collection of embedded chunks.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// Open opens (or creates) an index. A non-empty dir persists the index
// under dir/chromem.gob; an empty dir keeps it in memory.
func Open(dir string, embed EmbeddingFunc) (*Index, error) {
	var db *chromem.DB
	var err error
	if dir != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(dir, "chromem.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("rag: open persistent db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection("chunks", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("rag: open collection: %w", err)
	}
	return &Index{db: db, collection: collection}, nil
}

// Add embeds and stores the given chunks, returning how many were added.
func (ix *Index) Add(ctx context.Context, chunks []string, metadata map[string]string) (int, error) {
	added := 0
	for _, text := range chunks {
		if text == "" {
			continue
		}
		err := ix.collection.AddDocument(ctx, chromem.Document{
			ID:       uuid.NewString(),
			Content:  text,
			Metadata: metadata,
		})
		if err != nil {
			return added, fmt.Errorf("rag: add chunk: %w", err)
		}
		added++
	}
	return added, nil
}

// Query returns up to topK chunks most similar to the query, best first.
func (ix *Index) Query(ctx context.Context, query string, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = 5
	}
	// chromem rejects nResults above the collection size.
	if count := ix.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := ix.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("rag: query: %w", err)
	}
	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, Chunk{
			ID:       r.ID,
			Text:     r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		})
	}
	return chunks, nil
}

// Count reports the number of stored chunks.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Manager caches one Index per directory so the rag tools can address
// indexes by path without reopening the backing file on every call.
type Manager struct {
	embed   EmbeddingFunc
	mu      sync.Mutex
	indexes map[string]*Index
}

// NewManager creates a Manager using embed for all indexes it opens.
func NewManager(embed EmbeddingFunc) *Manager {
	return &Manager{embed: embed, indexes: make(map[string]*Index)}
}

// Open returns the Index for dir, opening it on first use.
func (m *Manager) Open(dir string) (*Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ix, ok := m.indexes[dir]; ok {
		return ix, nil
	}
	ix, err := Open(dir, m.embed)
	if err != nil {
		return nil, err
	}
	m.indexes[dir] = ix
	return ix, nil
}
