// Package navigation models the admin console navigation: the admin
// routes, the tabs shown for a location and the navigation menu.
package navigation

import (
	"strings"

	"github.com/flagkeep/flagkeep/pkg/config"
)

// Route groups.
const (
	GroupUsers    = "users"
	GroupAccess   = "access"
	GroupInstance = "instance"
	GroupLog      = "log"
)

// BillingTitle is the title of the route whose path changes on cloud
// instances.
const BillingTitle = "Billing & invoices"

// MenuFlags describe where a route is offered.
type MenuFlags struct {
	AdminSettings bool     `json:"adminSettings,omitempty"`
	Mode          []string `json:"mode,omitempty"`
	Billing       bool     `json:"billing,omitempty"`
}

// Route is an admin console route. Paths ending in /* have nested routes.
type Route struct {
	Title string
	Path  string
	Group string
	Menu  MenuFlags
}

// Link is a Route prepared for rendering: Path is the link target and
// Route the original pattern.
type Link struct {
	Title string    `json:"title"`
	Path  string    `json:"path"`
	Route string    `json:"route"`
	Group string    `json:"group,omitempty"`
	Menu  MenuFlags `json:"menu"`
}

// AdminRoutes lists the admin console routes in menu order.
var AdminRoutes = []Route{
	{Title: "Users", Path: "/admin/users", Group: GroupUsers, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Service accounts", Path: "/admin/service-accounts", Group: GroupUsers, Menu: MenuFlags{AdminSettings: true, Mode: []string{"enterprise"}}},
	{Title: "Groups", Path: "/admin/groups/*", Group: GroupUsers, Menu: MenuFlags{AdminSettings: true, Mode: []string{"enterprise"}}},
	{Title: "Roles", Path: "/admin/roles/*", Group: GroupUsers, Menu: MenuFlags{AdminSettings: true, Mode: []string{"enterprise"}}},
	{Title: "API access", Path: "/admin/api", Group: GroupAccess, Menu: MenuFlags{AdminSettings: true}},
	{Title: "CORS origins", Path: "/admin/cors", Group: GroupAccess, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Single sign-on", Path: "/admin/auth", Group: GroupAccess, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Network", Path: "/admin/network/*", Group: GroupInstance, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Maintenance", Path: "/admin/maintenance", Group: GroupInstance, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Instance stats", Path: "/admin/instance", Group: GroupInstance, Menu: MenuFlags{AdminSettings: true}},
	{Title: "Instance privacy", Path: "/admin/instance-privacy", Group: GroupInstance, Menu: MenuFlags{AdminSettings: true}},
	{Title: BillingTitle, Path: "/admin/admin-invoices", Group: GroupInstance, Menu: MenuFlags{AdminSettings: true, Billing: true}},
	{Title: "Login history", Path: "/admin/logins", Group: GroupLog, Menu: MenuFlags{AdminSettings: true, Mode: []string{"enterprise"}}},
	{Title: "Event log", Path: "/history", Group: GroupLog, Menu: MenuFlags{AdminSettings: true}},
}

// Flags resolves feature flags.
type Flags interface {
	IsEnabled(flag string) bool
}

// Routes returns the admin routes as links. On cloud instances the
// billing route points at /admin/billing.
func Routes(flags Flags) []Link {
	routes := make([]Route, len(AdminRoutes))
	copy(routes, AdminRoutes)

	if flags != nil && flags.IsEnabled(config.FlagUnleashCloud) {
		for i := range routes {
			if routes[i].Title == BillingTitle {
				routes[i].Path = "/admin/billing"
				break
			}
		}
	}

	links := make([]Link, 0, len(routes))
	for _, route := range routes {
		links = append(links, mapRouteLink(route))
	}
	return links
}

func mapRouteLink(route Route) Link {
	return Link{
		Title: route.Title,
		Path:  strings.Replace(route.Path, "/*", "", 1),
		Route: route.Path,
		Group: route.Group,
		Menu:  route.Menu,
	}
}

// pathSegment returns the i-th element of path split on "/", or "" when
// the path is shorter.
func pathSegment(path string, i int) string {
	parts := strings.Split(path, "/")
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
