package styles

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA")
	YellowColor    = lipgloss.Color("#FBBF24")
	PinkColor      = lipgloss.Color("#F472B6")
	OrangeColor    = lipgloss.Color("#FB923C")

	// RoleColors are assigned to roles by a stable hash of their id.
	RoleColors = []lipgloss.Color{BlueColor, SecondaryColor, YellowColor, PinkColor, OrangeColor, PrimaryColor}

	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		PaddingBottom(0)

	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	Author = lipgloss.NewStyle().Bold(true)

	UserAuthor = Author.Foreground(TextColor)

	OrchestratorAuthor = Author.Foreground(PrimaryColor)

	// ConsultLane indents private role dialogues under the main lane.
	ConsultLane = lipgloss.NewStyle().
			PaddingLeft(2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(BorderColor)

	Placeholder = lipgloss.NewStyle().
			Foreground(WarningColor).
			Italic(true)

	InputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
)

// RoleColor returns the display color of a role id.
func RoleColor(roleID string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(roleID))
	return RoleColors[h.Sum32()%uint32(len(RoleColors))]
}

// AuthorStyle returns the style of an event author.
func AuthorStyle(author string) lipgloss.Style {
	switch author {
	case "user":
		return UserAuthor
	case "orchestrator":
		return OrchestratorAuthor
	default:
		return Author.Foreground(RoleColor(author))
	}
}

// LaneIcon returns the marker drawn before an event of a lane kind.
func LaneIcon(main bool) string {
	if main {
		return "●"
	}
	return "↳"
}
