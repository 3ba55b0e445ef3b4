package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// TermProfile holds the detected terminal color profile, computed once so
// style helpers can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns hex on TrueColor terminals and no color otherwise, so
// 16/256-color terminals keep their own background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns hex on ANSI256+ terminals and ANSI white below that.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds every style the canvas draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	Fundamental lipgloss.AdaptiveColor
	Core        lipgloss.AdaptiveColor
	Advanced    lipgloss.AdaptiveColor
	Frontier    lipgloss.AdaptiveColor

	Base       lipgloss.Style
	Edge       lipgloss.Style
	EdgeDashed lipgloss.Style
	EdgeActive lipgloss.Style
	Pulse      lipgloss.Style
	Star       lipgloss.Style
	Panel      lipgloss.Style
	StatusBar  lipgloss.Style
	Flash      lipgloss.Style
	Title      lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Accent:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Muted:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"},
		Border:  lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},

		Fundamental: lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"},
		Core:        lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Advanced:    lipgloss.AdaptiveColor{Light: "#CC5500", Dark: "#FFB86C"},
		Frontier:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#FF79C6"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})
	t.Edge = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"})
	t.EdgeDashed = r.NewStyle().Foreground(t.Muted)
	t.EdgeActive = r.NewStyle().Foreground(t.Accent).Bold(true)
	t.Pulse = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"}).Bold(true)
	t.Star = r.NewStyle().Foreground(t.Border)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)
	t.StatusBar = r.NewStyle().Foreground(t.Muted)
	t.Flash = r.NewStyle().Foreground(t.Accent).Bold(true)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	return t
}

// LevelColor returns the node color for a level; unknown levels use the
// muted color.
func (t Theme) LevelColor(l model.Level) lipgloss.AdaptiveColor {
	switch l {
	case model.LevelFundamental:
		return t.Fundamental
	case model.LevelCore:
		return t.Core
	case model.LevelAdvanced:
		return t.Advanced
	case model.LevelFrontier:
		return t.Frontier
	}
	return t.Muted
}

// NodeStyle returns the box style of a node.
func (t Theme) NodeStyle(l model.Level, selected, onPath bool) lipgloss.Style {
	s := t.Renderer.NewStyle().Foreground(t.LevelColor(l))
	switch {
	case selected:
		s = s.Foreground(t.Accent).Bold(true).Reverse(true)
	case onPath:
		s = s.Foreground(t.Accent).Bold(true)
	}
	return s
}
