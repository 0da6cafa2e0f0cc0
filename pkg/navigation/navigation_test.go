package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFlags map[string]bool

func (f staticFlags) IsEnabled(flag string) bool { return f[flag] }

func findLink(links []Link, title string) (Link, bool) {
	for _, l := range links {
		if l.Title == title {
			return l, true
		}
	}
	return Link{}, false
}

func TestRoutes(t *testing.T) {
	links := Routes(staticFlags{})
	require.Len(t, links, len(AdminRoutes))

	groups, ok := findLink(links, "Groups")
	require.True(t, ok)
	assert.Equal(t, "/admin/groups", groups.Path)
	assert.Equal(t, "/admin/groups/*", groups.Route)

	billing, ok := findLink(links, BillingTitle)
	require.True(t, ok)
	assert.Equal(t, "/admin/admin-invoices", billing.Path)
}

func TestRoutesOnCloud(t *testing.T) {
	links := Routes(staticFlags{"UNLEASH_CLOUD": true})

	billing, ok := findLink(links, BillingTitle)
	require.True(t, ok)
	assert.Equal(t, "/admin/billing", billing.Path)
	assert.Equal(t, "/admin/billing", billing.Route)

	assert.Equal(t, "/admin/admin-invoices", AdminRoutes[11].Path, "shared route list must not change")
}

func TestTabs(t *testing.T) {
	links := Routes(nil)

	t.Run("users page", func(t *testing.T) {
		menu := Tabs(links, "/admin/groups/3")

		assert.Equal(t, GroupUsers, menu.Group)
		assert.Equal(t, "groups", menu.ActiveTab)
		for _, tab := range menu.Tabs {
			assert.NotEqual(t, "Event log", tab.Title)
			assert.NotEqual(t, "Login history", tab.Title)
		}
		assert.Len(t, menu.Tabs, len(AdminRoutes)-2)
		assert.Equal(t, Tab{Value: "groups", Title: "Groups", Path: "/admin/groups"}, menu.Tabs[2])
	})

	t.Run("log page shows every route", func(t *testing.T) {
		menu := Tabs(links, "/admin/logins")

		assert.Equal(t, GroupLog, menu.Group)
		assert.Equal(t, "logins", menu.ActiveTab)
		assert.Len(t, menu.Tabs, len(AdminRoutes))
	})

	t.Run("route without a third segment", func(t *testing.T) {
		menu := Tabs(links, "/history")

		assert.Equal(t, GroupLog, menu.Group)
		assert.Equal(t, "", menu.ActiveTab)
		last := menu.Tabs[len(menu.Tabs)-1]
		assert.Equal(t, "", last.Value)
	})

	t.Run("unknown page has no tabs", func(t *testing.T) {
		menu := Tabs(links, "/projects/default")

		assert.Empty(t, menu.Group)
		assert.Empty(t, menu.Tabs)
	})
}

func TestMenu(t *testing.T) {
	options := []Link{
		{Title: "Users", Path: "/admin/users", Group: GroupUsers},
		{Title: "API access", Path: "/admin/api", Group: GroupAccess},
		{Title: "Login history", Path: "/admin/logins", Group: GroupLog},
		{Title: "Event log", Path: "/history", Group: GroupLog},
	}

	items := Menu(options)
	require.Len(t, items, 4)
	assert.False(t, items[0].Divider)
	assert.False(t, items[1].Divider, "group change outside log has no divider")
	assert.True(t, items[2].Divider)
	assert.False(t, items[3].Divider)
}

func TestMenuLogFirst(t *testing.T) {
	items := Menu([]Link{{Title: "Event log", Path: "/history", Group: GroupLog}})
	assert.False(t, items[0].Divider)
}
