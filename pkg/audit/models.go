package audit

import "time"

// Action values recorded in the trail.
const (
	ActionLogin         = "login"
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
	ActionResetPassword = "reset-password"
)

// Resource values recorded in the trail.
const (
	ResourcePlatform = "platform"
	ResourceUser     = "user"
	ResourceSession  = "session"
)

// Entry is one recorded admin mutation.
type Entry struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Actor      string    `gorm:"index" json:"actor"`
	Action     string    `gorm:"index" json:"action"`
	Resource   string    `gorm:"index" json:"resource"`
	ResourceID string    `json:"resource_id"`
	Detail     string    `json:"detail,omitempty"`
}
