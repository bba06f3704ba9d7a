// Package session holds the per-browser-session context object: the
// identity and role snapshot, pending flash notification, the booking
// copies last shown to the user and any live search state.
package session

import (
	"io"
	"strings"
	"sync"
	"time"

	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
)

// Tokens are the identity provider credentials held for a session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Context is one browser session. All methods are safe for concurrent use.
type Context struct {
	ID string

	mu               sync.Mutex
	identityResolved bool
	identity         *models.Identity
	tokens           Tokens
	roleResolved     bool
	role             models.RoleAssignment
	flash            *models.Notification
	bookings         map[string]models.Booking
	search           io.Closer
	lastSeen         time.Time
}

func newContext(id string, now time.Time) *Context {
	return &Context{ID: id, lastSeen: now, bookings: map[string]models.Booking{}}
}

// Snapshot copies the identity and role state for one request.
func (c *Context) Snapshot() navigation.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := navigation.Snapshot{
		IdentityResolved: c.identityResolved,
		RoleResolved:     c.roleResolved,
	}
	if c.identity != nil {
		id := *c.identity
		s.Identity = &id
	}
	if c.roleResolved {
		s.Role = c.role.Role
	}
	return s
}

func (c *Context) Identity() *models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

func (c *Context) IdentityResolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identityResolved
}

func (c *Context) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.Email
}

func (c *Context) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// TokenExpired reports whether the access token needs a refresh at now.
func (c *Context) TokenExpired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity != nil && !c.tokens.ExpiresAt.IsZero() && !now.Before(c.tokens.ExpiresAt)
}

// SignIn records a resolved identity. A different account than before
// drops the cached role and booking copies.
func (c *Context) SignIn(identity models.Identity, tokens Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil || !strings.EqualFold(c.identity.Email, identity.Email) {
		c.roleResolved = false
		c.role = models.RoleAssignment{}
		c.bookings = map[string]models.Booking{}
	}
	c.identity = &identity
	c.tokens = tokens
	c.identityResolved = true
}

// UpdateIdentity replaces the identity without touching tokens or role.
func (c *Context) UpdateIdentity(identity models.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = &identity
}

// MarkAnonymous resolves the identity as "nobody signed in".
func (c *Context) MarkAnonymous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.identityResolved = true
	c.roleResolved = true
}

func (c *Context) Role() (models.RoleAssignment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role, c.roleResolved
}

func (c *Context) SetRole(r models.RoleAssignment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = r
	c.roleResolved = true
}

func (c *Context) InvalidateRole() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = models.RoleAssignment{}
	c.roleResolved = c.identity == nil && c.identityResolved
}

// Teardown ends the signed-in state: tokens, role, booking copies and live
// search go; the session itself stays as an anonymous one.
func (c *Context) Teardown() {
	c.mu.Lock()
	search := c.search
	c.search = nil
	c.clearLocked()
	c.identityResolved = true
	c.roleResolved = true
	c.mu.Unlock()

	if search != nil {
		_ = search.Close()
	}
}

// clearLocked expects c.mu held.
func (c *Context) clearLocked() {
	c.identity = nil
	c.tokens = Tokens{}
	c.role = models.RoleAssignment{}
	c.bookings = map[string]models.Booking{}
}

// Flash queues a notification for the next rendered view.
func (c *Context) Flash(level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash = &models.Notification{Level: level, Message: message}
}

// TakeFlash returns and clears the pending notification.
func (c *Context) TakeFlash() *models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.flash
	c.flash = nil
	return n
}

// RememberBookings keeps the copies most recently shown to the user, for
// redisplay only. Actions refetch the booking before checking it.
func (c *Context) RememberBookings(list []models.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings = make(map[string]models.Booking, len(list))
	for _, b := range list {
		c.bookings[b.ID] = b
	}
}

func (c *Context) RememberedBooking(id string) (models.Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bookings[id]
	return b, ok
}

// UpdateRememberedBooking replaces a kept copy after a confirmed mutation.
func (c *Context) UpdateRememberedBooking(b models.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings[b.ID] = b
}

func (c *Context) ForgetBooking(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bookings, id)
}

// Search returns the live search state, creating it with create on first use.
func (c *Context) Search(create func() io.Closer) io.Closer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.search == nil && create != nil {
		c.search = create()
	}
	return c.search
}

func (c *Context) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Context) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}

func (c *Context) close() {
	c.mu.Lock()
	search := c.search
	c.search = nil
	c.mu.Unlock()
	if search != nil {
		_ = search.Close()
	}
}
