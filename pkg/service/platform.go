package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tgoo/authadm/pkg/transport"
)

// PlatformService maps platform CRUD onto the admin endpoints. Stateless;
// each method is one transport call.
type PlatformService struct {
	client *transport.Client
}

// NewPlatformService creates a PlatformService.
func NewPlatformService(client *transport.Client) *PlatformService {
	return &PlatformService{client: client}
}

// List returns all platforms in server order.
func (s *PlatformService) List(ctx context.Context) ([]Platform, error) {
	var platforms []Platform
	if err := s.client.Send(
		ctx, http.MethodGet, "/admin/platforms", nil, nil, &platforms,
	); err != nil {
		return nil, fmt.Errorf("listing platforms: %w", err)
	}

	return platforms, nil
}

// Get returns one platform by id.
func (s *PlatformService) Get(ctx context.Context, id int64) (*Platform, error) {
	var platform Platform
	if err := s.client.Send(
		ctx, http.MethodGet, fmt.Sprintf("/admin/platforms/%d", id),
		nil, nil, &platform,
	); err != nil {
		return nil, fmt.Errorf("getting platform %d: %w", id, err)
	}

	return &platform, nil
}

// Create creates a new platform.
func (s *PlatformService) Create(
	ctx context.Context, input CreatePlatformInput,
) (*Platform, error) {
	var platform Platform
	if err := s.client.Send(
		ctx, http.MethodPost, "/admin/platforms", input, nil, &platform,
	); err != nil {
		return nil, fmt.Errorf("creating platform: %w", err)
	}

	return &platform, nil
}

// Update patches a platform by id.
func (s *PlatformService) Update(
	ctx context.Context, id int64, input UpdatePlatformInput,
) (*Platform, error) {
	var platform Platform
	if err := s.client.Send(
		ctx, http.MethodPatch, fmt.Sprintf("/admin/platforms/%d", id),
		input, nil, &platform,
	); err != nil {
		return nil, fmt.Errorf("updating platform %d: %w", id, err)
	}

	return &platform, nil
}

// Delete removes a platform by id.
func (s *PlatformService) Delete(ctx context.Context, id int64) error {
	if err := s.client.Send(
		ctx, http.MethodDelete, fmt.Sprintf("/admin/platforms/%d", id),
		nil, nil, nil,
	); err != nil {
		return fmt.Errorf("deleting platform %d: %w", id, err)
	}

	return nil
}
