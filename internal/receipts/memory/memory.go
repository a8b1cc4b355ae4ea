// Package memory is an in-process blob store for tests and the demo
// backend.
package memory

import (
	"context"
	"errors"
	"io"
	"sync"
)

type Store struct {
	baseURL string

	mu      sync.Mutex
	objects map[string][]byte

	// FailNext, when set, makes the next Put fail with the given error.
	FailNext error
}

func New(baseURL string) *Store {
	if baseURL == "" {
		baseURL = "memory://receipts"
	}
	return &Store{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (s *Store) Put(_ context.Context, path string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return err
	}
	if _, exists := s.objects[path]; exists {
		return errors.New("object already exists")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *Store) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

// Object returns stored bytes, for assertions.
func (s *Store) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	return data, ok
}

// Len reports the number of stored objects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
