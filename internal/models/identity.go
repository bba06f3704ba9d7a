package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleDecorator Role = "decorator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps an unknown or empty role to RoleUser, the default for
// accounts the backend has no record of yet.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDecorator:
		return RoleDecorator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Identity is the signed-in account as reported by the identity provider.
type Identity struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Profile is the sign-up profile.
type Profile struct {
	DisplayName string
	AvatarURL   string
}

// ProfilePatch carries the fields updateProfile should change; nil fields
// are left untouched.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
}

func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil
}

type DecoratorStatus string

const (
	DecoratorActive   DecoratorStatus = "active"
	DecoratorInactive DecoratorStatus = "inactive"
)

func (s DecoratorStatus) Valid() bool {
	return s == DecoratorActive || s == DecoratorInactive
}

// Toggle returns the opposite status.
func (s DecoratorStatus) Toggle() DecoratorStatus {
	if s == DecoratorActive {
		return DecoratorInactive
	}
	return DecoratorActive
}

type DecoratorProfile struct {
	Status            DecoratorStatus `json:"status"`
	Rating            float64         `json:"rating"`
	CompletedProjects int             `json:"completedProjects"`
	Experience        FlexString      `json:"experience,omitempty"`
	Specialties       []string        `json:"specialties,omitempty"`
	Bio               string          `json:"bio,omitempty"`
}

// RoleAssignment is the backend's user record.
type RoleAssignment struct {
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	ImageURL  string            `json:"image,omitempty"`
	Role      Role              `json:"role"`
	Decorator *DecoratorProfile `json:"decoratorInfo,omitempty"`
	CreatedAt time.Time         `json:"createdAt,omitempty"`
}

// Normalize applies the default role and drops a decorator profile from a
// record whose role is not decorator.
func (r RoleAssignment) Normalize() RoleAssignment {
	r.Role = ParseRole(string(r.Role))
	if r.Role != RoleDecorator {
		r.Decorator = nil
	}
	return r
}

func (r RoleAssignment) IsActiveDecorator() bool {
	return r.Role == RoleDecorator && r.Decorator != nil && r.Decorator.Status == DecoratorActive
}

// DefaultAssignment is used when the backend has no record for email.
func DefaultAssignment(email string) RoleAssignment {
	return RoleAssignment{Email: email, Role: RoleUser}
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Int returns the numeric value of f, or 0.
func (f FlexString) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(string(f)))
	return n
}
