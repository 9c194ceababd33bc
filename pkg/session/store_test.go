package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgoo/authadm/pkg/service"
)

// fakeAuthAPI lets each test script the auth endpoints.
type fakeAuthAPI struct {
	login   func(creds service.Credentials) (*service.LoginResult, error)
	profile func() (*service.UserProfile, error)
}

func (f *fakeAuthAPI) Login(
	_ context.Context, creds service.Credentials,
) (*service.LoginResult, error) {
	return f.login(creds)
}

func (f *fakeAuthAPI) Profile(context.Context) (*service.UserProfile, error) {
	return f.profile()
}

func newTestStore(t *testing.T, api AuthAPI) (*Store, *FileStorage) {
	t.Helper()

	storage := NewFileStorage(
		logrus.New(), filepath.Join(t.TempDir(), "auth-storage.json"),
	)

	return NewStore(logrus.New(), api, storage), storage
}

func TestStoreLogin(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(creds service.Credentials) (*service.LoginResult, error) {
			assert.Equal(t, "admin@corp.io", creds.Email)

			return &service.LoginResult{
				Token: "jwt-abc",
				User:  *testProfile(),
			}, nil
		},
	}

	store, storage := newTestStore(t, api)

	require.False(t, store.Authenticated())

	err := store.Login(context.Background(), service.Credentials{
		Email: "admin@corp.io", Password: "pw",
	})
	require.NoError(t, err)

	assert.Equal(t, "jwt-abc", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "admin@corp.io", store.User().Email)
	assert.True(t, store.Authenticated())
	assert.False(t, store.Loading(), "loading clears after the call")

	// The session survives as a persisted snapshot.
	snap := storage.Load()
	require.NotNil(t, snap)
	assert.Equal(t, "jwt-abc", snap.Token)
	assert.True(t, snap.Authenticated)
}

func TestStoreLoginFailure(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return nil, errors.New("invalid credentials")
		},
	}

	store, _ := newTestStore(t, api)

	err := store.Login(context.Background(), service.Credentials{
		Email: "x@y.io", Password: "nope",
	})
	require.Error(t, err)

	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	assert.False(t, store.Authenticated())
	assert.False(t, store.Loading(), "loading clears on the failure path too")
}

func TestStoreLoginWithoutTokenNotAuthenticated(t *testing.T) {
	// A 2xx login response missing its token must not produce a session
	// that claims to be signed in.
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "", User: *testProfile()}, nil
		},
	}

	store, _ := newTestStore(t, api)

	require.NoError(t, store.Login(context.Background(), service.Credentials{}))

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
}

func TestStoreLogout(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "tok", User: *testProfile()}, nil
		},
	}

	store, storage := newTestStore(t, api)

	require.NoError(t, store.Login(context.Background(), service.Credentials{}))
	require.True(t, store.Authenticated())

	store.Logout()

	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	assert.False(t, store.Authenticated())

	snap := storage.Load()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Token)
	assert.False(t, snap.Authenticated)
}

func TestStoreHydratesFromSnapshot(t *testing.T) {
	storage := NewFileStorage(
		logrus.New(), filepath.Join(t.TempDir(), "auth-storage.json"),
	)

	require.NoError(t, storage.Save(&Snapshot{
		Token:         "persisted-tok",
		User:          testProfile(),
		Authenticated: true,
	}))

	store := NewStore(logrus.New(), &fakeAuthAPI{}, storage)

	assert.Equal(t, "persisted-tok", store.Token())
	assert.True(t, store.Authenticated())
}

func TestStoreHydrationRequiresBoth(t *testing.T) {
	// A snapshot with a token but no profile must not read as signed in,
	// whatever its stored flag claims.
	storage := NewFileStorage(
		logrus.New(), filepath.Join(t.TempDir(), "auth-storage.json"),
	)

	require.NoError(t, storage.Save(&Snapshot{
		Token:         "orphan-tok",
		Authenticated: true,
	}))

	store := NewStore(logrus.New(), &fakeAuthAPI{}, storage)

	assert.False(t, store.Authenticated())
}

func TestStoreLoadProfile(t *testing.T) {
	refreshed := testProfile()
	refreshed.Role = service.RoleSuperAdmin

	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "tok", User: *testProfile()}, nil
		},
		profile: func() (*service.UserProfile, error) {
			return refreshed, nil
		},
	}

	store, _ := newTestStore(t, api)
	require.NoError(t, store.Login(context.Background(), service.Credentials{}))

	require.NoError(t, store.LoadProfile(context.Background()))

	assert.Equal(t, service.RoleSuperAdmin, store.User().Role)
	assert.True(t, store.Authenticated())
}

func TestStoreLoadProfileFailureLogsOut(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "tok", User: *testProfile()}, nil
		},
		profile: func() (*service.UserProfile, error) {
			return nil, errors.New("api error 401: Unauthorized")
		},
	}

	store, storage := newTestStore(t, api)
	require.NoError(t, store.Login(context.Background(), service.Credentials{}))

	err := store.LoadProfile(context.Background())
	require.Error(t, err)

	assert.False(t, store.Authenticated(),
		"a failed profile load invalidates the session")
	assert.Empty(t, store.Token())

	snap := storage.Load()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Token)
}

func TestStoreUpdateProfile(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "tok", User: *testProfile()}, nil
		},
	}

	store, _ := newTestStore(t, api)
	require.NoError(t, store.Login(context.Background(), service.Credentials{}))

	newName := "Renamed Person"
	store.UpdateProfile(ProfileUpdate{FullName: &newName})

	require.NotNil(t, store.User().FullName)
	assert.Equal(t, "Renamed Person", *store.User().FullName)
	assert.Equal(t, "admin@corp.io", store.User().Email,
		"untouched fields survive the patch")
}

func TestStoreUpdateProfileWithoutSession(t *testing.T) {
	store, _ := newTestStore(t, &fakeAuthAPI{})

	email := "ghost@corp.io"
	store.UpdateProfile(ProfileUpdate{Email: &email})

	assert.Nil(t, store.User())
}

func TestStoreReset(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(service.Credentials) (*service.LoginResult, error) {
			return &service.LoginResult{Token: "tok", User: *testProfile()}, nil
		},
	}

	store, storage := newTestStore(t, api)
	require.NoError(t, store.Login(context.Background(), service.Credentials{}))

	store.Reset()

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())

	// Reset is memory-only; the storage teardown belongs to the transport.
	assert.NotNil(t, storage.Load())
}
