package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tgoo/authadm/pkg/transport"
)

// UserService maps user CRUD onto the admin endpoints. Stateless apart
// from response-shape normalization on listings.
type UserService struct {
	client *transport.Client
}

// NewUserService creates a UserService.
func NewUserService(client *transport.Client) *UserService {
	return &UserService{client: client}
}

// userListEnvelope is the paginated wire shape of the listing endpoint.
type userListEnvelope struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// List returns users matching the given filters. The endpoint answers with
// either a bare array or a pagination envelope; both decode into one
// UserList so callers always see a single shape.
func (s *UserService) List(
	ctx context.Context, filters *UserFilters,
) (*UserList, error) {
	var raw json.RawMessage
	if err := s.client.Send(
		ctx, http.MethodGet, "/admin/users", nil, filters.Values(), &raw,
	); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return normalizeUserList(raw)
}

// normalizeUserList decodes both accepted wire shapes of a user listing.
func normalizeUserList(raw json.RawMessage) (*UserList, error) {
	trimmed := []byte(raw)
	for len(trimmed) > 0 &&
		(trimmed[0] == ' ' || trimmed[0] == '\t' ||
			trimmed[0] == '\n' || trimmed[0] == '\r') {
		trimmed = trimmed[1:]
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var users []User
		if err := json.Unmarshal(raw, &users); err != nil {
			return nil, fmt.Errorf("decoding user array: %w", err)
		}

		return &UserList{Items: users, Total: len(users)}, nil
	}

	var envelope userListEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding user envelope: %w", err)
	}

	return &UserList{Items: envelope.Users, Total: envelope.Total}, nil
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := s.client.Send(
		ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id),
		nil, nil, &user,
	); err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	return &user, nil
}

// Create creates a new user. The owning platform is referenced by code.
func (s *UserService) Create(
	ctx context.Context, input CreateUserInput,
) (*User, error) {
	var user User
	if err := s.client.Send(
		ctx, http.MethodPost, "/admin/users", input, nil, &user,
	); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// Update patches a user by id.
func (s *UserService) Update(
	ctx context.Context, id int64, input UpdateUserInput,
) (*User, error) {
	var user User
	if err := s.client.Send(
		ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d", id),
		input, nil, &user,
	); err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}

	return &user, nil
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password for a user.
func (s *UserService) ResetPassword(
	ctx context.Context, id int64, newPassword string,
) error {
	if err := s.client.Send(
		ctx, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/reset-password", id),
		resetPasswordRequest{NewPassword: newPassword}, nil, nil,
	); err != nil {
		return fmt.Errorf("resetting password for user %d: %w", id, err)
	}

	return nil
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.client.Send(
		ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id),
		nil, nil, nil,
	); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}

	return nil
}
