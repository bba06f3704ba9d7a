package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
)

func signedIn(role models.Role, roleResolved bool) navigation.Snapshot {
	return navigation.Snapshot{
		IdentityResolved: true,
		Identity:         &models.Identity{Email: "ava@example.com"},
		RoleResolved:     roleResolved,
		Role:             role,
	}
}

func TestEvaluate_TruthTable(t *testing.T) {
	anon := navigation.Snapshot{IdentityResolved: true, RoleResolved: true}
	unresolved := navigation.Snapshot{}

	cases := []struct {
		name     string
		snap     navigation.Snapshot
		req      navigation.Requirement
		expected navigation.State
	}{
		{"open route never waits", unresolved, navigation.Open, navigation.StateAllowed},
		{"identity pending", unresolved, navigation.AnyMember, navigation.StateChecking},
		{"identity resolved, role pending", signedIn("", false), navigation.AnyMember, navigation.StateChecking},
		{"no identity", anon, navigation.AnyMember, navigation.StateDeniedUnauthenticated},
		{"no identity on signed-in route", anon, navigation.SignedIn, navigation.StateDeniedUnauthenticated},
		{"signed-in route ignores role", signedIn("", false), navigation.SignedIn, navigation.StateAllowed},
		{"user on admin", signedIn(models.RoleUser, true), navigation.AdminOnly, navigation.StateDeniedWrongRole},
		{"decorator on admin", signedIn(models.RoleDecorator, true), navigation.AdminOnly, navigation.StateDeniedWrongRole},
		{"admin on admin", signedIn(models.RoleAdmin, true), navigation.AdminOnly, navigation.StateAllowed},
		{"admin on decorator", signedIn(models.RoleAdmin, true), navigation.DecoratorOnly, navigation.StateDeniedWrongRole},
		{"decorator on decorator", signedIn(models.RoleDecorator, true), navigation.DecoratorOnly, navigation.StateAllowed},
		{"user on member dashboard", signedIn(models.RoleUser, true), navigation.AnyMember, navigation.StateAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := navigation.Evaluate(tc.snap, tc.req, "/dashboard")
			assert.Equal(t, tc.expected, d.State)
		})
	}
}

func TestEvaluate_UnauthenticatedPreservesPath(t *testing.T) {
	anon := navigation.Snapshot{IdentityResolved: true, RoleResolved: true}

	d := navigation.Evaluate(anon, navigation.SignedIn, "/services/abc123?ref=home")

	assert.Equal(t, navigation.StateDeniedUnauthenticated, d.State)
	assert.Equal(t, "/login?redirect=%2Fservices%2Fabc123%3Fref%3Dhome", d.Redirect)
}

func TestEvaluate_WrongRoleOffersWayBack(t *testing.T) {
	d := navigation.Evaluate(signedIn(models.RoleUser, true), navigation.AdminOnly, "/dashboard/manage-users")
	assert.Equal(t, "/", d.Redirect)
}

func TestEvaluate_SignOutWhileViewing(t *testing.T) {
	snap := signedIn(models.RoleUser, true)
	assert.Equal(t, navigation.StateAllowed, navigation.Evaluate(snap, navigation.AnyMember, "/dashboard/profile").State)

	snap.Identity = nil
	snap.Role = ""
	assert.Equal(t, navigation.StateDeniedUnauthenticated, navigation.Evaluate(snap, navigation.AnyMember, "/dashboard/profile").State)
}

func TestSafeReturnPath(t *testing.T) {
	assert.Equal(t, "/services/1", navigation.SafeReturnPath("/services/1"))
	assert.Equal(t, "/", navigation.SafeReturnPath("https://evil.test/"))
	assert.Equal(t, "/", navigation.SafeReturnPath("//evil.test"))
	assert.Equal(t, "/", navigation.SafeReturnPath("/login?redirect=/x"))
	assert.Equal(t, "/", navigation.SafeReturnPath(""))
	assert.Equal(t, "/login", navigation.LoginRedirect("/"))
}
