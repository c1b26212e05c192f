package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, https://catppuccin.com/palette
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

const (
	colorBrand  = colorPink
	colorHeader = colorMauve
	colorFocus  = colorLavender
	colorError  = colorRed
	colorMuted  = colorOverlay1
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	headerStyle = lipgloss.NewStyle().Background(colorHeader).Foreground(colorBase).Bold(true)
	itemStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(colorText)
	dragStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(colorFocus).Background(colorSurface0)
	statusStyle = lipgloss.NewStyle().Foreground(colorMuted)
	recStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)
