package store

import (
	"context"
	"sort"
	"sync"

	"article-catalog/internal/model"
)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]model.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]model.Article)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.articles[code]
	return ok, nil
}

func (s *MemoryStore) Save(_ context.Context, article *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.Code] = *article
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, code)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, code string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// List returns a copy ordered by code.
func (s *MemoryStore) List(_ context.Context) ([]model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	articles := make([]model.Article, 0, len(s.articles))
	for _, a := range s.articles {
		articles = append(articles, a)
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Code < articles[j].Code
	})
	return articles, nil
}
