// Package filter composes the user-listing filter dimensions into the
// minimal query object: a dimension contributes only when it deviates from
// its default, and free-text search is debounced so interactive typing does
// not produce one request per keystroke.
package filter

import (
	"sync"
	"time"
)

const (
	// All is the sentinel a select dimension holds when no constraint is
	// chosen. It is excluded from the composed object, never sent.
	All = "all"

	// DefaultDebounce is the quiescence window applied to free-text search.
	DefaultDebounce = 500 * time.Millisecond
)

// Composed filter dimension keys, matching the listing query parameters.
const (
	KeySearch   = "search"
	KeyPlatform = "platform"
	KeyRole     = "role"
	KeyStatus   = "status"
)

// Composer combines four independent filter dimensions. Every effective
// change rebuilds the composed map from scratch and hands it to the change
// callback, which drives the refetch.
type Composer struct {
	mu       sync.Mutex
	debounce time.Duration
	onChange func(filters map[string]string)

	search         string // raw, pre-debounce
	debouncedSearch string
	platform       string
	role           string
	status         string

	timer *time.Timer
}

// NewComposer creates a Composer with all dimensions at their defaults.
// A zero debounce falls back to DefaultDebounce.
func NewComposer(
	debounce time.Duration,
	onChange func(filters map[string]string),
) *Composer {
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	return &Composer{
		debounce: debounce,
		onChange: onChange,
		platform: All,
		role:     All,
		status:   All,
	}
}

// SetSearch updates the free-text dimension. The value only contributes
// after the debounce window passes with no further keystrokes; the final
// keystroke's value wins.
func (c *Composer) SetSearch(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.search = value

	if c.timer != nil {
		c.timer.Stop()
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()

		if c.search == c.debouncedSearch {
			c.mu.Unlock()

			return
		}

		c.debouncedSearch = c.search
		c.mu.Unlock()

		c.fire()
	})
}

// SetPlatform updates the platform-code dimension. Takes effect immediately.
func (c *Composer) SetPlatform(code string) {
	c.setSelect(&c.platform, code)
}

// SetRole updates the role dimension. Takes effect immediately.
func (c *Composer) SetRole(role string) {
	c.setSelect(&c.role, role)
}

// SetStatus updates the status dimension. Takes effect immediately.
func (c *Composer) SetStatus(status string) {
	c.setSelect(&c.status, status)
}

func (c *Composer) setSelect(field *string, value string) {
	if value == "" {
		value = All
	}

	c.mu.Lock()

	if *field == value {
		c.mu.Unlock()

		return
	}

	*field = value
	c.mu.Unlock()

	c.fire()
}

// Compose builds the query object from the active dimensions. Defaults
// ("" search, "all" selects) are entirely absent, not present empty.
func (c *Composer) Compose() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.composeLocked()
}

func (c *Composer) composeLocked() map[string]string {
	filters := make(map[string]string, 4)

	if c.debouncedSearch != "" {
		filters[KeySearch] = c.debouncedSearch
	}

	if c.platform != All {
		filters[KeyPlatform] = c.platform
	}

	if c.role != All {
		filters[KeyRole] = c.role
	}

	if c.status != All {
		filters[KeyStatus] = c.status
	}

	return filters
}

// Flush commits a pending search value immediately, cancelling the
// debounce. Used when the caller knows typing is done (submit, one-shot
// commands).
func (c *Composer) Flush() {
	c.mu.Lock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	changed := c.search != c.debouncedSearch
	c.debouncedSearch = c.search
	c.mu.Unlock()

	if changed {
		c.fire()
	}
}

// HasActiveFilters reports whether any dimension deviates from its
// default. Drives the "clear filters" affordance.
func (c *Composer) HasActiveFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.debouncedSearch != "" ||
		c.platform != All ||
		c.role != All ||
		c.status != All
}

// Clear resets every dimension to its default and fires the callback with
// the empty composition. A pending debounced search is discarded.
func (c *Composer) Clear() {
	c.mu.Lock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	changed := c.debouncedSearch != "" || c.search != "" ||
		c.platform != All || c.role != All || c.status != All

	c.search = ""
	c.debouncedSearch = ""
	c.platform = All
	c.role = All
	c.status = All
	c.mu.Unlock()

	if changed {
		c.fire()
	}
}

// Stop cancels any pending debounced search without firing.
func (c *Composer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire invokes the change callback outside the lock with a fresh
// composition.
func (c *Composer) fire() {
	if c.onChange == nil {
		return
	}

	c.mu.Lock()
	filters := c.composeLocked()
	c.mu.Unlock()

	c.onChange(filters)
}
