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
	"github.com/tgoo/authadm/pkg/transport"
)

func TestNormalizeUserList(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expectedLen   int
		expectedTotal int
	}{
		{
			name:          "pagination envelope",
			raw:           `{"users": [{"id": 1, "email": "a@x.io"}, {"id": 2, "email": "b@x.io"}], "total": 42}`,
			expectedLen:   2,
			expectedTotal: 42,
		},
		{
			name:          "bare array totals its own length",
			raw:           `[{"id": 1, "email": "a@x.io"}, {"id": 2, "email": "b@x.io"}, {"id": 3, "email": "c@x.io"}]`,
			expectedLen:   3,
			expectedTotal: 3,
		},
		{
			name:          "bare array with leading whitespace",
			raw:           "\n  [{\"id\": 1, \"email\": \"a@x.io\"}]",
			expectedLen:   1,
			expectedTotal: 1,
		},
		{
			name:          "empty envelope",
			raw:           `{"users": [], "total": 0}`,
			expectedLen:   0,
			expectedTotal: 0,
		},
		{
			name:          "empty array",
			raw:           `[]`,
			expectedLen:   0,
			expectedTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := normalizeUserList(json.RawMessage(tt.raw))
			require.NoError(t, err)

			assert.Len(t, list.Items, tt.expectedLen)
			assert.Equal(t, tt.expectedTotal, list.Total)
		})
	}
}

func TestNormalizeUserListMalformed(t *testing.T) {
	_, err := normalizeUserList(json.RawMessage(`[{"id": "oops"`))
	assert.Error(t, err)
}

func TestUserServiceList(t *testing.T) {
	var gotQuery map[string][]string

	router := chi.NewRouter()
	router.Get("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"users": [
				{"id": 10, "email": "ops@corp.io", "role": "ADMIN", "status": "ACTIVE",
				 "platform": {"id": 1, "code": "corp", "name": "Corp"}}
			],
			"total": 1
		}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewUserService(newTestTransport(srv.URL))

	filters := &UserFilters{Search: "ops", Role: "ADMIN"}

	list, err := svc.List(context.Background(), filters)
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(10), list.Items[0].ID)
	assert.Equal(t, "ops@corp.io", list.Items[0].Email)
	assert.Equal(t, RoleAdmin, list.Items[0].Role)
	assert.Equal(t, "corp", list.Items[0].Platform.Code)
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, []string{"ops"}, gotQuery["search"])
	assert.Equal(t, []string{"ADMIN"}, gotQuery["role"])
	assert.NotContains(t, gotQuery, "platform",
		"unset dimensions stay out of the query")
	assert.NotContains(t, gotQuery, "status")
}

func TestUserServiceCreate(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "new@corp.io", body["email"])
		assert.Equal(t, "corp", body["platform"],
			"platform is referenced by code on create")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 11, "email": "new@corp.io", "status": "PENDING"}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewUserService(newTestTransport(srv.URL))

	created, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "new@corp.io",
		Password: "s3cret",
		Platform: "corp",
		Role:     RoleUser,
		Status:   StatusPending,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, StatusPending, created.Status)
}

func TestUserServiceResetPassword(t *testing.T) {
	var gotBody map[string]string

	router := chi.NewRouter()
	router.Post("/admin/users/{id}/reset-password",
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusNoContent)
		},
	)

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewUserService(newTestTransport(srv.URL))

	err := svc.ResetPassword(context.Background(), 5, "n3w-pass")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"newPassword": "n3w-pass"}, gotBody)
}

func TestUserServiceDeleteNotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "User not found"}`))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	svc := NewUserService(newTestTransport(srv.URL))

	err := svc.Delete(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, transport.IsNotFound(err))
	assert.Equal(t, "User not found", transport.ErrorMessage(err))
}
