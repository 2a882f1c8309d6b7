package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines all styles used by the UI, adapted from siftail's
// swappable-palette Theme (internal/tui/theme.go upstream): the same
// multi-palette structure, with log-severity badges replaced by
// container state/health badges and a log-line scheme.
type Theme struct {
	Name string

	// Container state badges (container table + action menu)
	StateRunningStyle    lipgloss.Style
	StatePausedStyle     lipgloss.Style
	StateRestartingStyle lipgloss.Style
	StateExitedStyle     lipgloss.Style
	StateDeadStyle       lipgloss.Style
	StateOtherStyle      lipgloss.Style

	// Health badges
	HealthHealthyStyle   lipgloss.Style
	HealthUnhealthyStyle lipgloss.Style
	HealthStartingStyle  lipgloss.Style

	// Table chrome
	HeaderStyle   lipgloss.Style
	SelectedStyle lipgloss.Style
	SparklineHi   lipgloss.Style
	SparklineLo   lipgloss.Style

	// Log view
	TimestampStyle lipgloss.Style
	SearchHitStyle lipgloss.Style

	// Chrome
	ToolbarStyle     lipgloss.Style
	HotkeyKeyStyle   lipgloss.Style
	HotkeyLabelStyle lipgloss.Style
	StatusStyle      lipgloss.Style
	StatusErrorStyle lipgloss.Style
	PromptStyle      lipgloss.Style
}

func DarkTheme() *Theme {
	return &Theme{
		Name: "dark",

		StateRunningStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		StatePausedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		StateRestartingStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		StateExitedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StateDeadStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		StateOtherStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		HealthHealthyStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		HealthUnhealthyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		HealthStartingStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		SelectedStyle: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("15")),
		SparklineHi:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SparklineLo:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),

		TimestampStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SearchHitStyle: lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")),

		ToolbarStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		HotkeyKeyStyle:   lipgloss.NewStyle().Bold(true),
		HotkeyLabelStyle: lipgloss.NewStyle().Faint(true),
		StatusStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true),
		StatusErrorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Italic(true),
		PromptStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
	}
}

func NordTheme() *Theme {
	return &Theme{
		Name: "nord",

		StateRunningStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		StatePausedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		StateRestartingStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("222")).Bold(true),
		StateExitedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		StateDeadStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		StateOtherStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		HealthHealthyStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		HealthUnhealthyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		HealthStartingStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("179")),

		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Bold(true),
		SelectedStyle: lipgloss.NewStyle().Background(lipgloss.Color("195")).Foreground(lipgloss.Color("0")),
		SparklineHi:   lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		SparklineLo:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),

		TimestampStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		SearchHitStyle: lipgloss.NewStyle().Background(lipgloss.Color("39")).Foreground(lipgloss.Color("230")),

		ToolbarStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Bold(true),
		HotkeyKeyStyle:   lipgloss.NewStyle().Bold(true),
		HotkeyLabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		StatusStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		StatusErrorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Italic(true),
		PromptStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	}
}

func LightTheme() *Theme {
	return &Theme{
		Name: "light",

		StateRunningStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		StatePausedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		StateRestartingStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("94")).Bold(true),
		StateExitedStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		StateDeadStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		StateOtherStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("60")),

		HealthHealthyStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		HealthUnhealthyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		HealthStartingStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),

		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Bold(true),
		SelectedStyle: lipgloss.NewStyle().Background(lipgloss.Color("253")).Foreground(lipgloss.Color("0")),
		SparklineHi:   lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		SparklineLo:   lipgloss.NewStyle().Foreground(lipgloss.Color("27")),

		TimestampStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("102")),
		SearchHitStyle: lipgloss.NewStyle().Background(lipgloss.Color("227")).Foreground(lipgloss.Color("0")),

		ToolbarStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Bold(true),
		HotkeyKeyStyle:   lipgloss.NewStyle().Bold(true),
		HotkeyLabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
		StatusStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Italic(true),
		StatusErrorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Italic(true),
		PromptStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("27")).Bold(true),
	}
}

var themes = []*Theme{DarkTheme(), NordTheme(), LightTheme()}

func themeByName(name string) *Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return DarkTheme()
}

func themeNames() []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		out = append(out, t.Name)
	}
	return out
}

// stateStyle picks the badge style for a container's lifecycle state.
func (t *Theme) stateStyle(s interface{ String() string }) lipgloss.Style {
	switch s.String() {
	case "running":
		return t.StateRunningStyle
	case "paused":
		return t.StatePausedStyle
	case "restarting", "removing":
		return t.StateRestartingStyle
	case "exited":
		return t.StateExitedStyle
	case "dead":
		return t.StateDeadStyle
	default:
		return t.StateOtherStyle
	}
}
