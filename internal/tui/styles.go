package tui

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#fff4d0")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")
	mutedBorderColor       = lipgloss.Color("#56526e")

	taglineStyle        = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedBorderColor).Padding(1, 2)
	inputBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	recommendStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Background(lipgloss.Color("#3b3553")).Padding(0, 1)
	recommendFocusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroSecondaryTextColor).Padding(0, 1)
	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroAccentColor).Padding(0, 2)

	tileStyle               = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedBorderColor)
	tileFocusedStyle        = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(heroAccentColor)
	tileTitleStyle          = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	tileSubtitleStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor)
	placeholderTileStyle    = lipgloss.NewStyle().Border(dashedBorder).BorderForeground(mutedBorderColor)
	placeholderFocusedStyle = lipgloss.NewStyle().Border(dashedBorder).BorderForeground(heroAccentColor)
	placeholderLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Align(lipgloss.Center)
	skeletonTileStyle       = lipgloss.NewStyle().Background(lipgloss.Color("250")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250"))

	previewStyle          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Background(heroEmberColor).Padding(0, 1)
	previewTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	navEnabledStyle       = lipgloss.NewStyle().Foreground(heroTextColor)
	navDisabledStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
	candidateStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	candidateFocusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))

	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#110600"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		" ██████╗   █████╗   ██████╗   ██████╗   ███████╗  ",
		"██╔════╝  ██╔══██╗  ██╔══██╗  ██╔══██╗  ██╔════╝  ",
		"██║       ███████║  ██████╔╝  ██║  ██║  ███████╗  ",
		"██║       ██╔══██║  ██╔══██╗  ██║  ██║  ╚════██║  ",
		"╚██████╗  ██║  ██║  ██║  ██║  ██████╔╝  ███████║  ",
		" ╚═════╝  ╚═╝  ╚═╝  ╚═╝  ╚═╝  ╚═════╝   ╚══════╝  ",
	}
)

var dashedBorder = lipgloss.Border{
	Top:         "╌",
	Bottom:      "╌",
	Left:        "╎",
	Right:       "╎",
	TopLeft:     "╭",
	TopRight:    "╮",
	BottomLeft:  "╰",
	BottomRight: "╯",
}
