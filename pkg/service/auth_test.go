package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceLogin(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "admin@corp.io", body["email"])
		assert.Equal(t, "corp", body["platform"],
			"login carries the configured platform code")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token": "jwt-abc",
			"user": {"id": 1, "email": "admin@corp.io", "role": "SUPER_ADMIN", "status": "ACTIVE"}
		}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewAuthService(newTestTransport(srv.URL), "corp")

	result, err := svc.Login(context.Background(), Credentials{
		Email:    "admin@corp.io",
		Password: "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "jwt-abc", result.Token)
	assert.Equal(t, "admin@corp.io", result.User.Email)
	assert.Equal(t, RoleSuperAdmin, result.User.Role)
}

func TestAuthServiceLoginRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "bad credentials",
			status:  http.StatusUnauthorized,
			body:    `{"error": "Invalid credentials"}`,
			message: "Invalid credentials",
		},
		{
			name:    "blocked account",
			status:  http.StatusForbidden,
			body:    `{"error": "Account is blocked"}`,
			message: "Account is blocked",
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

			svc := NewAuthService(newTestTransport(srv.URL), "corp")

			_, err := svc.Login(context.Background(), Credentials{
				Email: "x@y.io", Password: "nope",
			})
			require.Error(t, err)

			assert.True(t, IsAuthenticationError(err))

			var authErr *AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.message, authErr.Message)
		})
	}
}

func TestAuthServiceLoginServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	))
	defer srv.Close()

	svc := NewAuthService(newTestTransport(srv.URL), "corp")

	_, err := svc.Login(context.Background(), Credentials{
		Email: "x@y.io", Password: "pw",
	})
	require.Error(t, err)

	assert.False(t, IsAuthenticationError(err),
		"a 5xx is an outage, not a login rejection")
}

func TestAuthServiceProfile(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"id": 1, "email": "admin@corp.io", "role": "ADMIN", "status": "ACTIVE"}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewAuthService(newTestTransport(srv.URL), "corp")

	profile, err := svc.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "admin@corp.io", profile.Email)
	assert.Equal(t, RoleAdmin, profile.Role)
}

func TestAuthServiceChangePassword(t *testing.T) {
	var gotBody map[string]string

	router := chi.NewRouter()
	router.Post("/password/change", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewAuthService(newTestTransport(srv.URL), "corp")

	err := svc.ChangePassword(context.Background(), "old-pw", "new-pw")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"oldPassword": "old-pw",
		"newPassword": "new-pw",
	}, gotBody)
}
