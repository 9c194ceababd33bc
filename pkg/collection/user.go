package collection

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/service"
)

// UserAPI is the slice of the user service the store depends on.
type UserAPI interface {
	List(ctx context.Context, filters *service.UserFilters) (*service.UserList, error)
	Create(ctx context.Context, input service.CreateUserInput) (*service.User, error)
	Update(ctx context.Context, id int64, input service.UpdateUserInput) (*service.User, error)
	ResetPassword(ctx context.Context, id int64, newPassword string) error
	Delete(ctx context.Context, id int64) error
}

// UserStore caches the user collection along with the active listing
// filters and the server-reported total.
type UserStore struct {
	mu  sync.Mutex
	log logrus.FieldLogger
	api UserAPI

	items    []service.User
	selected *service.User
	filters  service.UserFilters
	total    int
	loading  bool
	fetchErr string
}

// NewUserStore creates an empty user store.
func NewUserStore(log logrus.FieldLogger, api UserAPI) *UserStore {
	return &UserStore{
		log: log.WithField("component", "user-store"),
		api: api,
	}
}

// Fetch replaces the collection with the server's listing. A nil filters
// argument reuses the store's current filters. On failure the prior items
// stay visible.
func (s *UserStore) Fetch(ctx context.Context, filters *service.UserFilters) error {
	s.mu.Lock()
	s.loading = true
	s.fetchErr = ""

	effective := s.filters
	if filters != nil {
		effective = *filters
	}
	s.mu.Unlock()

	list, err := s.api.List(ctx, &effective)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if err != nil {
		s.fetchErr = err.Error()

		return err
	}

	s.items = list.Items
	s.total = list.Total

	return nil
}

// Create creates a user and prepends it to the cached collection, so the
// newest account shows first without a refetch.
func (s *UserStore) Create(
	ctx context.Context, input service.CreateUserInput,
) (*service.User, error) {
	created, err := s.api.Create(ctx, input)
	if err != nil {
		s.setError(err)

		return nil, err
	}

	s.mu.Lock()
	next := make([]service.User, 0, len(s.items)+1)
	next = append(next, *created)
	next = append(next, s.items...)
	s.items = next
	s.total++
	s.fetchErr = ""
	s.mu.Unlock()

	return created, nil
}

// Update patches a user and replaces the matching cached item by id.
func (s *UserStore) Update(
	ctx context.Context, id int64, input service.UpdateUserInput,
) (*service.User, error) {
	updated, err := s.api.Update(ctx, id, input)
	if err != nil {
		s.setError(err)

		return nil, err
	}

	s.mu.Lock()
	next := make([]service.User, len(s.items))

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

// ResetPassword sets a new password for a user. The collection itself is
// unaffected.
func (s *UserStore) ResetPassword(
	ctx context.Context, id int64, newPassword string,
) error {
	if err := s.api.ResetPassword(ctx, id, newPassword); err != nil {
		s.setError(err)

		return err
	}

	return nil
}

// Delete removes a user and drops it from the cached collection.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.setError(err)

		return err
	}

	s.mu.Lock()
	next := make([]service.User, 0, len(s.items))

	for i := range s.items {
		if s.items[i].ID != id {
			next = append(next, s.items[i])
		}
	}

	s.items = next
	s.total--
	s.fetchErr = ""
	s.mu.Unlock()

	return nil
}

// Select tracks which user a dialog is editing. Local only.
func (s *UserStore) Select(u *service.User) {
	s.mu.Lock()
	s.selected = u
	s.mu.Unlock()
}

// Selected returns the currently selected user, or nil.
func (s *UserStore) Selected() *service.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected
}

// SetFilters replaces the stored filters. Local only; call Fetch to apply
// them against the server.
func (s *UserStore) SetFilters(f service.UserFilters) {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

// ClearFilters resets the stored filters to no constraints.
func (s *UserStore) ClearFilters() {
	s.mu.Lock()
	s.filters = service.UserFilters{}
	s.mu.Unlock()
}

// Filters returns the stored filters.
func (s *UserStore) Filters() service.UserFilters {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filters
}

// Items returns the current collection snapshot in server order.
func (s *UserStore) Items() []service.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items
}

// Total returns the server-reported total for the active filters.
func (s *UserStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total
}

// Loading reports whether a fetch is in flight.
func (s *UserStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

// Err returns the last failure message, or "" when the last call succeeded.
func (s *UserStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fetchErr
}

// ClearErr resets the failure message.
func (s *UserStore) ClearErr() {
	s.mu.Lock()
	s.fetchErr = ""
	s.mu.Unlock()
}

func (s *UserStore) setError(err error) {
	s.mu.Lock()
	s.fetchErr = err.Error()
	s.mu.Unlock()
}
