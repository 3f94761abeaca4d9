package memstore

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore is a bounded Store that evicts least-recently-used entries
// once capacity is reached. Used for short-term working memory where
// losing cold entries is acceptable.
type LRUStore struct {
	cache *lru.Cache[string, string]
}

// NewLRUStore creates a store holding at most capacity entries.
func NewLRUStore(capacity int) (*LRUStore, error) {
	cache, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("memstore: lru: %w", err)
	}
	return &LRUStore{cache: cache}, nil
}

func (s *LRUStore) Get(key string) (string, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *LRUStore) Set(key, value string) error {
	s.cache.Add(key, value)
	return nil
}

func (s *LRUStore) Delete(key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *LRUStore) Keys(prefix string) ([]string, error) {
	all := s.cache.Keys()
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the current number of entries.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
