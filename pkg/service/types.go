package service

import (
	"net/url"
	"strconv"
	"time"
)

// Role is a user's permission level within a platform.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Status is a user's account state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// PlatformRef is the denormalized platform reference embedded in user
// records. Domain is only present on the profile endpoint.
type PlatformRef struct {
	ID     int64   `json:"id"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Domain *string `json:"domain,omitempty"`
}

// Platform is a tenant scope; users belong to exactly one.
type Platform struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Domain      *string   `json:"domain"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"isActive"`
	IsMaster    bool      `json:"isMaster"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Count       *struct {
		Users int `json:"users"`
	} `json:"_count,omitempty"`
}

// UserCount returns the denormalized user count, or 0 when absent.
func (p *Platform) UserCount() int {
	if p.Count == nil {
		return 0
	}

	return p.Count.Users
}

// User is an account as seen by the admin listing endpoints.
type User struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	FullName   *string     `json:"fullName"`
	Role       Role        `json:"role"`
	Status     Status      `json:"status"`
	PlatformID int64       `json:"platformId"`
	Platform   PlatformRef `json:"platform"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// UserProfile is the authenticated user's own record.
type UserProfile struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FullName  *string     `json:"fullName"`
	Role      Role        `json:"role"`
	Status    Status      `json:"status"`
	Platform  PlatformRef `json:"platform"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the successful login response.
type LoginResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// CreatePlatformInput are the fields accepted on platform creation. Code
// is immutable after creation and serves as a natural key elsewhere.
type CreatePlatformInput struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Domain      *string `json:"domain,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdatePlatformInput are the fields accepted on platform update. Unset
// fields are left untouched by the server.
type UpdatePlatformInput struct {
	Name        *string `json:"name,omitempty"`
	Domain      *string `json:"domain,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateUserInput are the fields accepted on user creation. Platform is
// the human-chosen platform code, not the numeric id.
type CreateUserInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"fullName,omitempty"`
	Platform string  `json:"platform"`
	Role     Role    `json:"role,omitempty"`
	Status   Status  `json:"status,omitempty"`
}

// UpdateUserInput are the fields accepted on user update.
type UpdateUserInput struct {
	FullName *string `json:"fullName,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

// UserFilters are the user listing predicates. All dimensions are
// optional; an unset dimension is entirely absent from the query string,
// never present with an empty value.
type UserFilters struct {
	Platform string
	Role     string
	Status   string
	Search   string
	Page     int
	Limit    int
}

// Values builds the outgoing query parameters from the set dimensions.
func (f *UserFilters) Values() url.Values {
	q := url.Values{}

	if f == nil {
		return q
	}

	if f.Platform != "" {
		q.Set("platform", f.Platform)
	}

	if f.Role != "" {
		q.Set("role", f.Role)
	}

	if f.Status != "" {
		q.Set("status", f.Status)
	}

	if f.Search != "" {
		q.Set("search", f.Search)
	}

	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	return q
}

// UserList is the normalized user listing response.
type UserList struct {
	Items []User
	Total int
}
