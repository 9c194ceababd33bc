// Package collection holds the in-memory resource collections the console
// renders from: a cached item list plus loading/error/selection state,
// synchronized with the server through explicit mutation calls. Every
// mutation replaces the whole backing slice, so a snapshot handed to a
// reader is never partially mutated.
package collection

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/service"
)

// PlatformAPI is the slice of the platform service the store depends on.
type PlatformAPI interface {
	List(ctx context.Context) ([]service.Platform, error)
	Create(ctx context.Context, input service.CreatePlatformInput) (*service.Platform, error)
	Update(ctx context.Context, id int64, input service.UpdatePlatformInput) (*service.Platform, error)
	Delete(ctx context.Context, id int64) error
}

// PlatformStore caches the platform collection. It is the single source of
// truth for rendering platforms; no caller re-derives platform data
// independently.
type PlatformStore struct {
	mu  sync.Mutex
	log logrus.FieldLogger
	api PlatformAPI

	items    []service.Platform
	selected *service.Platform
	loading  bool
	fetchErr string
}

// NewPlatformStore creates an empty platform store.
func NewPlatformStore(log logrus.FieldLogger, api PlatformAPI) *PlatformStore {
	return &PlatformStore{
		log: log.WithField("component", "platform-store"),
		api: api,
	}
}

// Fetch replaces the collection with the server's listing. On failure the
// prior items stay visible; stale-but-valid beats a blanked view.
func (s *PlatformStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.fetchErr = ""
	s.mu.Unlock()

	platforms, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if err != nil {
		s.fetchErr = err.Error()

		return err
	}

	s.items = platforms

	return nil
}

// Create creates a platform and appends it to the cached collection.
// On failure the collection is untouched; surfacing the error to the user
// is the caller's job.
func (s *PlatformStore) Create(
	ctx context.Context, input service.CreatePlatformInput,
) (*service.Platform, error) {
	created, err := s.api.Create(ctx, input)
	if err != nil {
		s.setError(err)

		return nil, err
	}

	s.mu.Lock()
	next := make([]service.Platform, 0, len(s.items)+1)
	next = append(next, s.items...)
	next = append(next, *created)
	s.items = next
	s.fetchErr = ""
	s.mu.Unlock()

	return created, nil
}

// Update patches a platform and replaces the matching cached item by id.
// At most one match is expected; duplicates would be an upstream
// data-integrity violation and get no special handling.
func (s *PlatformStore) Update(
	ctx context.Context, id int64, input service.UpdatePlatformInput,
) (*service.Platform, error) {
	updated, err := s.api.Update(ctx, id, input)
	if err != nil {
		s.setError(err)

		return nil, err
	}

	s.mu.Lock()
	next := make([]service.Platform, len(s.items))

	for i := range s.items {
		if s.items[i].ID == id {
			next[i] = *updated
		} else {
			next[i] = s.items[i]
		}
	}

	s.items = next
	s.fetchErr = ""
	s.mu.Unlock()

	return updated, nil
}

// Delete removes a platform and drops it from the cached collection.
func (s *PlatformStore) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.setError(err)

		return err
	}

	s.mu.Lock()
	next := make([]service.Platform, 0, len(s.items))

	for i := range s.items {
		if s.items[i].ID != id {
			next = append(next, s.items[i])
		}
	}

	s.items = next
	s.fetchErr = ""
	s.mu.Unlock()

	return nil
}

// Select tracks which platform a dialog is editing. Local only.
func (s *PlatformStore) Select(p *service.Platform) {
	s.mu.Lock()
	s.selected = p
	s.mu.Unlock()
}

// Selected returns the currently selected platform, or nil.
func (s *PlatformStore) Selected() *service.Platform {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected
}

// Items returns the current collection snapshot in server order.
func (s *PlatformStore) Items() []service.Platform {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items
}

// Loading reports whether a fetch is in flight.
func (s *PlatformStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

// Err returns the last failure message, or "" when the last call succeeded.
func (s *PlatformStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fetchErr
}

// ClearErr resets the failure message.
func (s *PlatformStore) ClearErr() {
	s.mu.Lock()
	s.fetchErr = ""
	s.mu.Unlock()
}

func (s *PlatformStore) setError(err error) {
	s.mu.Lock()
	s.fetchErr = err.Error()
	s.mu.Unlock()
}
