package navigation

import "elite-decor-web/internal/models"

var userMenu = []models.MenuItem{
	{Path: "/dashboard/profile", Label: "My Profile", Icon: "user"},
	{Path: "/dashboard/my-bookings", Label: "My Bookings", Icon: "calendar"},
	{Path: "/dashboard/payment-history", Label: "Payment History", Icon: "credit-card"},
}

var roleMenus = map[models.Role][]models.MenuItem{
	models.RoleAdmin: {
		{Path: "/dashboard/manage-services", Label: "Manage Services", Icon: "boxes"},
		{Path: "/dashboard/manage-bookings", Label: "Manage Bookings", Icon: "calendar"},
		{Path: "/dashboard/manage-users", Label: "Manage Users", Icon: "users"},
	},
	models.RoleDecorator: {
		{Path: "/decorator/my-projects", Label: "Assigned Projects", Icon: "tasks"},
		{Path: "/decorator/earnings", Label: "Earnings", Icon: "dollar"},
	},
}

// MenuFor returns the dashboard menu for role: the member items, then a
// divider and the role's own items when it has any.
func MenuFor(role models.Role) []models.MenuItem {
	extra := roleMenus[role]
	out := make([]models.MenuItem, 0, len(userMenu)+1+len(extra))
	out = append(out, userMenu...)
	if len(extra) > 0 {
		out = append(out, models.MenuItem{Divider: true})
		out = append(out, extra...)
	}
	return out
}
