package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

var (
	green   = lipgloss.Color("#32CD32")
	red     = lipgloss.Color("#FF4500")
	neutral = lipgloss.Color("#F0F0F0")
	subtle  = lipgloss.AdaptiveColor{Light: "#9C9C9C", Dark: "#6C6C6C"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(neutral).MarginBottom(1)
	symbolStyle   = lipgloss.NewStyle().Bold(true).Width(6)
	priceStyle    = lipgloss.NewStyle().Foreground(neutral).Width(16).Align(lipgloss.Right)
	fractionStyle = lipgloss.NewStyle().Foreground(subtle)
	cursorStyle   = lipgloss.NewStyle().Foreground(green)
	helpStyle     = lipgloss.NewStyle().Foreground(subtle).MarginTop(1)
	statusStyle   = lipgloss.NewStyle().Foreground(red)
	noticeStyle   = lipgloss.NewStyle().Foreground(green)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(subtle).Padding(0, 1)
)

func changeStyle(c domain.ColorToken) lipgloss.Style {
	switch c {
	case domain.ColorGreen:
		return lipgloss.NewStyle().Foreground(green)
	case domain.ColorRed:
		return lipgloss.NewStyle().Foreground(red)
	default:
		return lipgloss.NewStyle().Foreground(neutral)
	}
}
