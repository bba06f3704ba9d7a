package navigation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
)

func TestResolve_Shells(t *testing.T) {
	cases := []struct {
		method, path string
		view         string
		shell        navigation.Shell
	}{
		{http.MethodGet, "/", "home", navigation.ShellPublic},
		{http.MethodGet, "/services", "services", navigation.ShellPublic},
		{http.MethodGet, "/dashboard/profile", "profile", navigation.ShellUser},
		{http.MethodGet, "/dashboard/manage-services", "manage-services", navigation.ShellAdmin},
		{http.MethodPost, "/dashboard/manage-users/a%40x.io/status", "manage-users", navigation.ShellAdmin},
		{http.MethodGet, "/decorator/earnings", "earnings", navigation.ShellDecorator},
	}
	for _, tc := range cases {
		m := navigation.Resolve(tc.method, tc.path)
		assert.False(t, m.NotFound, tc.path)
		assert.Equal(t, tc.view, m.Route.View, tc.path)
		assert.Equal(t, tc.shell, m.Route.Shell, tc.path)
	}
}

func TestResolve_InheritsRequirement(t *testing.T) {
	m := navigation.Resolve(http.MethodPost, "/dashboard/my-bookings/b1/cancel")
	assert.True(t, m.Route.Requirement.Permits(models.RoleDecorator))
	assert.Equal(t, "b1", m.Params["id"])

	admin := navigation.Resolve(http.MethodPost, "/dashboard/manage-bookings/b1/assign")
	assert.False(t, admin.Route.Requirement.Permits(models.RoleUser))
	assert.True(t, admin.Route.Requirement.Permits(models.RoleAdmin))
}

func TestResolve_ServiceDetailNeedsSignIn(t *testing.T) {
	list := navigation.Resolve(http.MethodGet, "/services")
	detail := navigation.Resolve(http.MethodGet, "/services/s1")

	assert.False(t, list.Route.Requirement.Authenticated)
	assert.True(t, detail.Route.Requirement.Authenticated)
	assert.Empty(t, detail.Route.Requirement.Roles)
}

func TestResolve_MostSpecificWins(t *testing.T) {
	m := navigation.Resolve(http.MethodGet, "/dashboard/manage-services")
	assert.Equal(t, navigation.ShellAdmin, m.Route.Shell)
}

func TestResolve_NotFound(t *testing.T) {
	for _, p := range []string{"/nope", "/dashboard/unknown", "/services/a/b/c"} {
		m := navigation.Resolve(http.MethodGet, p)
		assert.True(t, m.NotFound, p)
		assert.Equal(t, navigation.NotFoundView, m.Route.View)
		assert.Equal(t, navigation.ShellPublic, m.Route.Shell)
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	first := navigation.Resolve(http.MethodGet, "/decorator/my-projects")
	navigation.Resolve(http.MethodGet, "/dashboard/manage-users")
	second := navigation.Resolve(http.MethodGet, "/decorator/my-projects")
	assert.Equal(t, first, second)
}

func TestResolve_HeadActsAsGet(t *testing.T) {
	m := navigation.Resolve(http.MethodHead, "/about")
	require.False(t, m.NotFound)
	assert.Equal(t, "about", m.Route.View)
}
