package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tgoo/authadm/pkg/transport"
)

// AuthenticationError is a rejected login: bad credentials or an
// inactive/blocked account.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// IsAuthenticationError reports whether err is a login rejection.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError

	return errors.As(err, &authErr)
}

// AuthService maps authentication operations onto the auth endpoints. It
// holds no state beyond the platform code stamped onto login requests.
type AuthService struct {
	client       *transport.Client
	platformCode string
}

// NewAuthService creates an AuthService logging into the given platform.
func NewAuthService(client *transport.Client, platformCode string) *AuthService {
	return &AuthService{client: client, platformCode: platformCode}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

// Login exchanges credentials for a token and the user's record. Client
// errors surface as AuthenticationErrors carrying the server's reason.
func (s *AuthService) Login(
	ctx context.Context, creds Credentials,
) (*LoginResult, error) {
	req := loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Platform: s.platformCode,
	}

	var result LoginResult
	if err := s.client.Send(
		ctx, http.MethodPost, "/auth/login", req, nil, &result,
	); err != nil {
		var apiErr *transport.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, &AuthenticationError{Message: apiErr.Message}
		}

		return nil, fmt.Errorf("logging in: %w", err)
	}

	return &result, nil
}

// Profile fetches the authenticated user's own record.
func (s *AuthService) Profile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := s.client.Send(
		ctx, http.MethodGet, "/auth/profile", nil, nil, &profile,
	); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	return &profile, nil
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword changes the authenticated user's own password.
func (s *AuthService) ChangePassword(
	ctx context.Context, oldPassword, newPassword string,
) error {
	req := changePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}

	if err := s.client.Send(
		ctx, http.MethodPost, "/password/change", req, nil, nil,
	); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}

	return nil
}
