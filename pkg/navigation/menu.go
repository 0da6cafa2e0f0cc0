package navigation

// MenuItem is an entry of the navigation menu.
type MenuItem struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	Group   string `json:"group,omitempty"`
	Divider bool   `json:"divider"`
}

// Menu turns links into menu items. A divider precedes the first log
// entry that follows an entry of another group.
func Menu(options []Link) []MenuItem {
	items := make([]MenuItem, 0, len(options))
	for i, option := range options {
		divider := false
		if i > 0 {
			previous := options[i-1].Group
			divider = previous != "" && previous != option.Group && option.Group == GroupLog
		}
		items = append(items, MenuItem{
			Title:   option.Title,
			Path:    option.Path,
			Group:   option.Group,
			Divider: divider,
		})
	}
	return items
}
