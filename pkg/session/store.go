package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/service"
)

// AuthAPI is the slice of the auth service the session store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds service.Credentials) (*service.LoginResult, error)
	Profile(ctx context.Context) (*service.UserProfile, error)
}

// ProfileUpdate is a shallow patch applied to the current profile locally,
// with no server round-trip.
type ProfileUpdate struct {
	Email    *string
	FullName *string
	Role     *service.Role
	Status   *service.Status
}

// Store owns the authentication session: token, current profile, and the
// authenticated flag. The flag is true iff both token and profile are set;
// every transition maintains that atomically. Each state change is
// persisted as a snapshot through the attached storage.
type Store struct {
	mu      sync.Mutex
	log     logrus.FieldLogger
	api     AuthAPI
	storage *FileStorage

	token         string
	user          *service.UserProfile
	authenticated bool
	loading       bool
}

// NewStore creates a session store and prepopulates it from the persisted
// snapshot, so a previously stored token is usable before the first
// request fires.
func NewStore(
	log logrus.FieldLogger,
	api AuthAPI,
	storage *FileStorage,
) *Store {
	s := &Store{
		log:     log.WithField("component", "session"),
		api:     api,
		storage: storage,
	}

	if snap := storage.Load(); snap != nil {
		s.token = snap.Token
		s.user = snap.User
		s.authenticated = snap.Token != "" && snap.User != nil
	}

	return s
}

// Login authenticates and populates the session. The loading flag is set
// for the duration of the call and cleared on both paths.
func (s *Store) Login(ctx context.Context, creds service.Credentials) error {
	s.setLoading(true)
	defer s.setLoading(false)

	result, err := s.api.Login(ctx, creds)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = result.Token
	s.user = &result.User
	s.authenticated = s.token != "" && s.user != nil
	s.persistLocked()
	s.mu.Unlock()

	s.log.WithField("email", result.User.Email).Info("Logged in")

	return nil
}

// Logout clears the session locally. The server holds no revocable state
// for the token, so no request is made.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.authenticated = false
	s.persistLocked()
	s.mu.Unlock()
}

// LoadProfile refreshes the current profile using the existing token. A
// failure is treated as token invalidity: the session is logged out before
// the error is returned so the caller can redirect.
func (s *Store) LoadProfile(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.Logout()

		return err
	}

	s.mu.Lock()
	s.user = profile
	s.authenticated = s.token != "" && s.user != nil
	s.persistLocked()
	s.mu.Unlock()

	return nil
}

// UpdateProfile merges the patch into the current profile. Local only;
// used for optimistic display after an external change.
func (s *Store) UpdateProfile(patch ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}

	user := *s.user

	if patch.Email != nil {
		user.Email = *patch.Email
	}

	if patch.FullName != nil {
		user.FullName = patch.FullName
	}

	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if patch.Status != nil {
		user.Status = *patch.Status
	}

	s.user = &user
	s.persistLocked()
}

// Reset drops in-memory session state without touching storage. Wired as
// the transport's unauthorized hook, which has already cleared the
// persisted snapshot by the time this runs.
func (s *Store) Reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
}

// Token returns the current bearer token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token
}

// User returns the current profile, or nil when unauthenticated.
func (s *Store) User() *service.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user
}

// Authenticated reports whether the session holds a token and a profile.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticated
}

// Loading reports whether a login or profile load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// persistLocked writes the durable subset of the current state. Callers
// hold s.mu.
func (s *Store) persistLocked() {
	snap := &Snapshot{
		Token:         s.token,
		User:          s.user,
		Authenticated: s.authenticated,
	}

	if err := s.storage.Save(snap); err != nil {
		s.log.WithError(err).Warn("Failed to persist session")
	}
}
