package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dailycard/internal/model"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorGold      = lipgloss.Color("220")
)

// TabActive style for the selected tab label.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// TabInactive style for the other tab labels.
var TabInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// CardText is the base style of the quote text.
var CardText = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Align(lipgloss.Center)

// CardAuthor style for the attribution line.
var CardAuthor = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Align(lipgloss.Center)

// CardCategory style for the category badge.
var CardCategory = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// Heart marks a saved card.
var Heart = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// EndTitle style for the end-of-collection card.
var EndTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Muted style for secondary copy.
var Muted = lipgloss.NewStyle().
	Foreground(colorSecondary)

// PaywallBox frames the upgrade prompt.
var PaywallBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGold).
	Padding(1, 3)

// PaywallTitle style for the upgrade headline.
var PaywallTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorGold)

// ListSelected style for the highlighted favorite.
var ListSelected = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// ListItem style for the other favorites.
var ListItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// textStyle renders the quote text in the chosen style. A terminal cannot
// switch typefaces, so each family maps to an emphasis instead.
func textStyle(a model.Appearance, width int) lipgloss.Style {
	s := CardText
	switch a.Font {
	case model.FontSerif:
		s = s.Italic(true)
	case model.FontMono:
		s = s.Foreground(lipgloss.Color("150"))
	}
	switch a.Size {
	case model.SizeSmall:
		width = width / 2
	case model.SizeLarge:
		width = width * 9 / 10
		s = s.Bold(true)
	default:
		width = width * 2 / 3
	}
	if width < 20 {
		width = 20
	}
	return s.Width(width)
}

// SetTheme adjusts the card text for the terminal background. "light"
// switches the bright foregrounds to dark ones; anything else keeps the
// dark theme.
func SetTheme(name string) {
	fg := lipgloss.Color("255")
	if name == "light" {
		fg = lipgloss.Color("235")
	}
	CardText = CardText.Foreground(fg)
	EndTitle = EndTitle.Foreground(fg)
}
