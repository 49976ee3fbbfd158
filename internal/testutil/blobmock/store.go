package blobmock

import (
	"context"
	"io"
	"sync"

	"loan-backoffice/internal/domain/document"
)

var _ document.BlobStore = (*Store)(nil)

// Store keeps objects in memory. PutErr and RemoveErr force failures.
type Store struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Removed   []string
	PutErr    error
	RemoveErr error
}

func New() *Store { return &Store{Objects: map[string][]byte{}} }

func (s *Store) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = map[string][]byte{}
	}
	s.Objects[key] = b
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Removed = append(s.Removed, key)
	return nil
}

func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}
