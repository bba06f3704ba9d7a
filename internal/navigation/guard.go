package navigation

import (
	"net/url"
	"strings"

	"elite-decor-web/internal/models"
)

type State string

const (
	StateChecking              State = "checking"
	StateDeniedUnauthenticated State = "denied-unauthenticated"
	StateDeniedWrongRole       State = "denied-wrong-role"
	StateAllowed               State = "allowed"
)

// Snapshot is the identity and role as seen by one request. The two
// resolution flags are independent.
type Snapshot struct {
	IdentityResolved bool
	Identity         *models.Identity
	RoleResolved     bool
	Role             models.Role
}

type Decision struct {
	State State
	// Redirect is set for StateDeniedUnauthenticated (sign-in with return
	// path) and StateDeniedWrongRole (safe default).
	Redirect string
}

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// SafeDefault is the way back offered on access-denied pages.
const SafeDefault = "/"

// Evaluate applies the guard to one snapshot. requestURI is the originally
// requested path and query, preserved in the sign-in redirect.
func Evaluate(s Snapshot, r Requirement, requestURI string) Decision {
	if !r.Authenticated && len(r.Roles) == 0 {
		return Decision{State: StateAllowed}
	}
	if !s.IdentityResolved {
		return Decision{State: StateChecking}
	}
	if s.Identity == nil {
		return Decision{State: StateDeniedUnauthenticated, Redirect: LoginRedirect(requestURI)}
	}
	if len(r.Roles) == 0 {
		return Decision{State: StateAllowed}
	}
	if !s.RoleResolved {
		return Decision{State: StateChecking}
	}
	if !r.Permits(s.Role) {
		return Decision{State: StateDeniedWrongRole, Redirect: SafeDefault}
	}
	return Decision{State: StateAllowed}
}

// LoginRedirect builds the sign-in URL that returns to requestURI.
func LoginRedirect(requestURI string) string {
	target := SafeReturnPath(requestURI)
	if target == SafeDefault {
		return LoginPath
	}
	return LoginPath + "?redirect=" + url.QueryEscape(target)
}

// SafeReturnPath accepts only same-site absolute paths; anything else,
// including the auth pages themselves, becomes SafeDefault.
func SafeReturnPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\r\n") {
		return SafeDefault
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return SafeDefault
	}
	switch u.Path {
	case LoginPath, "/register", "/logout":
		return SafeDefault
	}
	return p
}
