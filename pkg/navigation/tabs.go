package navigation

import "strings"

// Tab is one tab of the admin tabs menu.
type Tab struct {
	Value string `json:"value"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// TabsMenu is the admin tabs menu for a location.
type TabsMenu struct {
	Group     string `json:"group,omitempty"`
	ActiveTab string `json:"activeTab"`
	Tabs      []Tab  `json:"tabs"`
}

// Tabs computes the tabs shown for pathname. The group is that of the
// first route whose path occurs in pathname; without a group there are no
// tabs. Tabs are the routes of the same group plus every route outside the
// log group.
func Tabs(routes []Link, pathname string) TabsMenu {
	menu := TabsMenu{
		ActiveTab: pathSegment(pathname, 2),
		Tabs:      []Tab{},
	}

	for _, route := range routes {
		if strings.Contains(pathname, route.Path) {
			menu.Group = route.Group
			break
		}
	}
	if menu.Group == "" {
		return menu
	}

	for _, route := range routes {
		if route.Group == menu.Group || route.Group != GroupLog {
			menu.Tabs = append(menu.Tabs, Tab{
				Value: pathSegment(route.Route, 2),
				Title: route.Title,
				Path:  route.Path,
			})
		}
	}
	return menu
}
