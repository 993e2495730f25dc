package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mimahin/gmgbd/internal/apperr"
)

// DefaultMaxViews bounds the number of page views kept in memory.
const DefaultMaxViews = 4096

// Store keeps live page views in a bounded LRU. The least recently used view
// is evicted once the bound is reached; nothing outlives the process.
type Store struct {
	mu    sync.Mutex
	views *lru.Cache[string, *View]
}

// NewStore creates a store holding at most maxViews views.
func NewStore(maxViews int) (*Store, error) {
	if maxViews <= 0 {
		maxViews = DefaultMaxViews
	}
	cache, err := lru.New[string, *View](maxViews)
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	return &Store{views: cache}, nil
}

// New starts a page view with default state.
func (s *Store) New() View {
	v := newView(uuid.NewString())
	s.mu.Lock()
	s.views.Add(v.ID, v)
	s.mu.Unlock()
	return snapshot(v)
}

// Get returns a snapshot of the view with the given ID.
func (s *Store) Get(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views.Get(id)
	if !ok {
		return View{}, fmt.Errorf("view %s: %w", id, apperr.ErrNotFound)
	}
	return snapshot(v), nil
}

// Update applies fn to the view under the store lock, so transitions on one
// view never interleave, and returns the resulting snapshot.
func (s *Store) Update(id string, fn func(*View)) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views.Get(id)
	if !ok {
		return View{}, fmt.Errorf("view %s: %w", id, apperr.ErrNotFound)
	}
	fn(v)
	return snapshot(v), nil
}

// Len returns the number of live views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views.Len()
}

func snapshot(v *View) View {
	out := *v
	modal := *v.Modal
	out.Modal = &modal
	return out
}
