// Package navigation holds the browser route tree, the route guard state
// machine and the role-based dashboard menus. Everything here is pure:
// results depend only on the arguments.
package navigation

import (
	"net/http"
	"strings"

	"elite-decor-web/internal/models"
)

type Shell string

const (
	ShellPublic    Shell = "public"
	ShellUser      Shell = "user-dashboard"
	ShellAdmin     Shell = "admin-dashboard"
	ShellDecorator Shell = "decorator-dashboard"
	ShellNone      Shell = "none"
)

// Requirement is what a route asks of the current session. The zero value
// is an open route.
type Requirement struct {
	Authenticated bool
	// Roles, when non-empty, restricts access to these roles.
	Roles []models.Role
}

var (
	Open          = Requirement{}
	SignedIn      = Requirement{Authenticated: true}
	AnyMember     = Requirement{Authenticated: true, Roles: []models.Role{models.RoleUser, models.RoleDecorator, models.RoleAdmin}}
	AdminOnly     = Requirement{Authenticated: true, Roles: []models.Role{models.RoleAdmin}}
	DecoratorOnly = Requirement{Authenticated: true, Roles: []models.Role{models.RoleDecorator}}
)

func (r Requirement) Permits(role models.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Node is one entry of the declarative route tree. Children inherit the
// parent's shell and requirement unless they set their own.
type Node struct {
	Path        string
	View        string
	Methods     []string
	Shell       Shell
	Requirement *Requirement
	Children    []Node
}

func req(r Requirement) *Requirement { return &r }

var (
	get     = []string{http.MethodGet}
	post    = []string{http.MethodPost}
	getPost = []string{http.MethodGet, http.MethodPost}
)

// Tree is the full browser route table.
var Tree = []Node{
	{
		Path: "/", View: "home", Methods: get, Shell: ShellPublic, Requirement: req(Open),
		Children: []Node{
			{Path: "about", View: "about", Methods: get},
			{Path: "contact", View: "contact", Methods: get},
			{Path: "services", View: "services", Methods: get},
			{Path: "services/:id", View: "service-detail", Methods: get, Requirement: req(SignedIn)},
			{Path: "services/:id/book", View: "service-detail", Methods: post, Requirement: req(SignedIn)},
			{Path: "login", View: "login", Methods: getPost},
			{Path: "register", View: "register", Methods: getPost},
			{Path: "logout", View: "logout", Methods: post},
			{Path: "payment/success", View: "payment-success", Methods: get, Requirement: req(SignedIn)},
			{Path: "payment/cancel", View: "payment-cancel", Methods: get, Requirement: req(SignedIn)},
		},
	},
	{
		Path: "/dashboard", View: "dashboard", Methods: get, Shell: ShellUser, Requirement: req(AnyMember),
		Children: []Node{
			{Path: "profile", View: "profile", Methods: getPost},
			{Path: "my-bookings", View: "my-bookings", Methods: get},
			{Path: "my-bookings/:id/cancel", View: "my-bookings", Methods: post},
			{Path: "my-bookings/:id/pay", View: "my-bookings", Methods: post},
			{Path: "payment-history", View: "payment-history", Methods: get},
		},
	},
	{
		Path: "/dashboard/manage-services", View: "manage-services", Methods: getPost, Shell: ShellAdmin, Requirement: req(AdminOnly),
		Children: []Node{
			{Path: ":id", View: "manage-services", Methods: post},
			{Path: ":id/delete", View: "manage-services", Methods: post},
		},
	},
	{
		Path: "/dashboard/manage-bookings", View: "manage-bookings", Methods: get, Shell: ShellAdmin, Requirement: req(AdminOnly),
		Children: []Node{
			{Path: ":id/assign", View: "manage-bookings", Methods: post},
		},
	},
	{
		Path: "/dashboard/manage-users", View: "manage-users", Methods: get, Shell: ShellAdmin, Requirement: req(AdminOnly),
		Children: []Node{
			{Path: ":email/make-decorator", View: "manage-users", Methods: post},
			{Path: ":email/status", View: "manage-users", Methods: post},
		},
	},
	{
		Path: "/decorator", View: "decorator", Methods: get, Shell: ShellDecorator, Requirement: req(DecoratorOnly),
		Children: []Node{
			{Path: "my-projects", View: "my-projects", Methods: get},
			{Path: "my-projects/:id/status", View: "my-projects", Methods: post},
			{Path: "earnings", View: "earnings", Methods: get},
		},
	},
	{Path: "/session", View: "session", Methods: get, Shell: ShellNone, Requirement: req(Open)},
	{Path: "/session/refresh-role", View: "session", Methods: post, Shell: ShellNone, Requirement: req(SignedIn)},
	{Path: "/ws", View: "realtime", Methods: get, Shell: ShellNone, Requirement: req(Open)},
	{Path: "/health", View: "health", Methods: get, Shell: ShellNone, Requirement: req(Open)},
	{Path: "/metrics", View: "metrics", Methods: get, Shell: ShellNone, Requirement: req(Open)},
}

// Route is a flattened tree entry.
type Route struct {
	Pattern     string
	View        string
	Methods     []string
	Shell       Shell
	Requirement Requirement
	segments    []string
	literals    int
}

// Match is the result of resolving a request.
type Match struct {
	Route    Route
	Params   map[string]string
	NotFound bool
}

// NotFoundView is rendered for every unmatched path.
const NotFoundView = "not-found"

var routes = Flatten(Tree)

// Routes returns the flattened route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Flatten expands a tree into absolute routes in declaration order.
func Flatten(tree []Node) []Route {
	var out []Route
	var walk func(nodes []Node, prefix string, shell Shell, requirement Requirement)
	walk = func(nodes []Node, prefix string, shell Shell, requirement Requirement) {
		for _, n := range nodes {
			pattern := joinPath(prefix, n.Path)
			s := shell
			if n.Shell != "" {
				s = n.Shell
			}
			r := requirement
			if n.Requirement != nil {
				r = *n.Requirement
			}
			segs := split(pattern)
			lit := 0
			for _, seg := range segs {
				if !strings.HasPrefix(seg, ":") {
					lit++
				}
			}
			out = append(out, Route{
				Pattern:     pattern,
				View:        n.View,
				Methods:     n.Methods,
				Shell:       s,
				Requirement: r,
				segments:    segs,
				literals:    lit,
			})
			walk(n.Children, pattern, s, r)
		}
	}
	walk(tree, "", ShellPublic, Open)
	return out
}

// Resolve finds the route for method and path. When several patterns match,
// the one with the most literal segments wins. Unmatched requests resolve to
// the public not-found view.
func Resolve(method, path string) Match {
	segs := split(path)
	best := -1
	var bestParams map[string]string
	for i, r := range routes {
		if !allows(r.Methods, method) {
			continue
		}
		params, ok := matchSegments(r.segments, segs)
		if !ok {
			continue
		}
		if best < 0 || r.literals > routes[best].literals {
			best = i
			bestParams = params
		}
	}
	if best < 0 {
		return Match{
			Route:    Route{Pattern: path, View: NotFoundView, Shell: ShellPublic, Requirement: Open},
			Params:   map[string]string{},
			NotFound: true,
		}
	}
	return Match{Route: routes[best], Params: bestParams}
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return nil, false
			}
			params[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

func allows(methods []string, method string) bool {
	if method == http.MethodHead {
		method = http.MethodGet
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func joinPath(prefix, p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	if prefix == "/" || prefix == "" {
		return "/" + p
	}
	return prefix + "/" + p
}
