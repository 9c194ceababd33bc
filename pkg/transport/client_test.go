package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgoo/authadm/pkg/config"
)

// fakeStorage is an in-memory SessionStorage.
type fakeStorage struct {
	token   string
	cleared bool
}

func (f *fakeStorage) Token() string { return f.token }
func (f *fakeStorage) Clear()        { f.cleared = true; f.token = "" }

// recordingRedirector counts redirect invocations.
type recordingRedirector struct {
	calls int
}

func (r *recordingRedirector) RedirectToLogin() { r.calls++ }

func newTestClient(
	t *testing.T, serverURL, token string,
) (*Client, *fakeStorage, *[]string, *recordingRedirector) {
	t.Helper()

	storage := &fakeStorage{token: token}
	redirector := &recordingRedirector{}

	var notices []string

	notifier := NotifierFunc(func(message string) {
		notices = append(notices, message)
	})

	client := NewClient(
		logrus.New(),
		&config.API{
			BaseURL: serverURL,
			Timeout: 5 * time.Second,
		},
		storage, notifier, redirector,
	)

	return client, storage, &notices, redirector
}

func TestClientSend(t *testing.T) {
	var (
		gotAuth      string
		gotRequestID string
		gotBody      map[string]string
	)

	router := chi.NewRouter()
	router.Post("/widgets", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "name": "thing"}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	client, _, notices, redirector := newTestClient(t, srv.URL, "tok-123")

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	err := client.Send(
		context.Background(), http.MethodPost, "/widgets",
		map[string]string{"name": "thing"}, nil, &out,
	)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, map[string]string{"name": "thing"}, gotBody)
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "thing", out.Name)
	assert.Empty(t, *notices)
	assert.Zero(t, redirector.calls)
}

func TestClientSendWithoutToken(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	client, _, _, _ := newTestClient(t, srv.URL, "")

	err := client.Send(
		context.Background(), http.MethodGet, "/public", nil, nil, nil,
	)
	require.NoError(t, err)

	assert.Empty(t, gotAuth, "unauthenticated requests carry no bearer header")
}

func TestClientUnauthorized(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Token expired"}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	client, storage, notices, redirector := newTestClient(t, srv.URL, "stale")

	resets := 0
	client.OnUnauthorized(func() { resets++ })

	err := client.Send(
		context.Background(), http.MethodGet, "/admin/users", nil, nil, nil,
	)
	require.Error(t, err)

	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Token expired", ErrorMessage(err))
	assert.True(t, storage.cleared, "401 clears the persisted session")
	assert.Equal(t, 1, resets, "401 resets the in-memory session once")
	assert.Equal(t, []string{msgSessionExpired}, *notices)
	assert.Equal(t, 1, redirector.calls)
}

func TestClientForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": "Admin role required"}`))
		},
	))
	defer srv.Close()

	client, storage, notices, redirector := newTestClient(t, srv.URL, "tok")

	err := client.Send(
		context.Background(), http.MethodDelete, "/admin/users/1", nil, nil, nil,
	)
	require.Error(t, err)

	assert.True(t, IsForbidden(err))
	assert.False(t, storage.cleared, "403 keeps the session")
	assert.Equal(t, []string{msgForbidden}, *notices)
	assert.Zero(t, redirector.calls, "403 does not redirect")
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	))
	defer srv.Close()

	client, storage, notices, _ := newTestClient(t, srv.URL, "tok")

	err := client.Send(
		context.Background(), http.MethodGet, "/admin/platforms", nil, nil, nil,
	)
	require.Error(t, err)

	assert.True(t, IsServerError(err))
	assert.False(t, storage.cleared)
	assert.Equal(t, []string{msgServerError}, *notices)
}

func TestClientErrorMessageFallback(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{
			name:     "error field",
			status:   http.StatusConflict,
			body:     `{"error": "Platform code already exists"}`,
			expected: "Platform code already exists",
		},
		{
			name:     "message field",
			status:   http.StatusBadRequest,
			body:     `{"message": "email is required"}`,
			expected: "email is required",
		},
		{
			name:     "empty body falls back to status text",
			status:   http.StatusNotFound,
			body:     ``,
			expected: "Not Found",
		},
		{
			name:     "malformed body falls back to status text",
			status:   http.StatusBadRequest,
			body:     `<html>nope</html>`,
			expected: "Bad Request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				},
			))
			defer srv.Close()

			client, _, _, _ := newTestClient(t, srv.URL, "tok")

			err := client.Send(
				context.Background(), http.MethodGet, "/x", nil, nil, nil,
			)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expected, apiErr.Message)
		})
	}
}

func TestClientQueryParams(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{}`))
		},
	))
	defer srv.Close()

	client, _, _, _ := newTestClient(t, srv.URL, "tok")

	query := url.Values{
		"search": {"alice"},
		"role":   {"ADMIN"},
	}

	err := client.Send(
		context.Background(), http.MethodGet, "/admin/users", nil, query, nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "role=ADMIN&search=alice", gotQuery)
}
