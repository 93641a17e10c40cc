package enums

// ViewMode selects the catalog rendering layout.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

func ParseViewMode(raw string) ViewMode {
	if raw == string(ViewModeList) {
		return ViewModeList
	}
	return ViewModeGrid
}
