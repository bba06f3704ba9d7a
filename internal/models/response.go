package models

// MenuItem is one entry of a dashboard side menu. Divider entries carry no
// path.
type MenuItem struct {
	Path    string `json:"path,omitempty"`
	Label   string `json:"label,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Divider bool   `json:"divider,omitempty"`
}

type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// SessionUser is the identity as shown to the browser.
type SessionUser struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// View is the JSON view model every page handler renders.
type View struct {
	View         string            `json:"view"`
	Shell        string            `json:"shell"`
	Title        string            `json:"title,omitempty"`
	User         *SessionUser      `json:"user,omitempty"`
	Role         Role              `json:"role,omitempty"`
	Menu         []MenuItem        `json:"menu,omitempty"`
	Data         interface{}       `json:"data,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	Redirect     string            `json:"redirect,omitempty"`
}

type SessionStatusResponse struct {
	IdentityResolved bool         `json:"identity_resolved"`
	RoleResolved     bool         `json:"role_resolved"`
	User             *SessionUser `json:"user,omitempty"`
	Role             Role         `json:"role,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ProjectView is one assigned project with the statuses its decorator may
// move it to.
type ProjectView struct {
	Booking
	CurrentStatus ProjectStatus   `json:"currentStatus"`
	NextStatuses  []ProjectStatus `json:"nextStatuses"`
}

type ProjectsPage struct {
	Today []ProjectView `json:"today"`
	Other []ProjectView `json:"other"`
}

type CatalogPage struct {
	Services   []Service     `json:"services"`
	Categories []Category    `json:"categories"`
	Filter     ServiceFilter `json:"filter"`
}
