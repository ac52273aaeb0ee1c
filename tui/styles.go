package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorPrimary = lipgloss.Color("#0b69ff")
	ColorHeader  = lipgloss.Color("#171f46")
	ColorLabel   = lipgloss.Color("#616e7c")
	ColorValue   = lipgloss.Color("#12022f")
	ColorMuted   = lipgloss.Color("#94a3b8")
	ColorBorder  = lipgloss.Color("#cbd5e1")
	ColorError   = lipgloss.Color("#e11d48")
	ColorRating  = lipgloss.Color("#3b82f6")
)

// Icons.
const (
	IconStar   = "★"
	IconMinus  = "[-]"
	IconPlus   = "[+]"
	IconArrow  = "→"
	currencyRs = "Rs"
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader).MarginBottom(1)
	PriceStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorValue)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	RatingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(ColorRating).
				Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(ColorPrimary).
			Padding(0, 2)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	RuleStyle = lipgloss.NewStyle().Foreground(ColorBorder)
)
