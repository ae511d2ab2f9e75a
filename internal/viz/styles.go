package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	HeaderStyle     lipgloss.Style
	MetricLabel     lipgloss.Style
	MetricValue     lipgloss.Style
	ActiveParam     lipgloss.Style
	StatusRunning   lipgloss.Style
	StatusPaused    lipgloss.Style
	StatusRecording lipgloss.Style
	KeyHint         lipgloss.Style
	Subtle          lipgloss.Style
	GraphStyle      lipgloss.Style
	PanelStyle      lipgloss.Style
	ParticleStyle   lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Muted)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	MetricValue = lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	ActiveParam = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	StatusPaused = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	StatusRecording = lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	GraphStyle = lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(46)
	ParticleStyle = lipgloss.NewStyle().Foreground(t.Accent)

	SparkHigh = lipgloss.NewStyle().Foreground(t.Success)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Error)
}

// ProgressBar renders a fraction in [0, 1] as a colored bar.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders values as block characters, sampled to width. It is
// uncolored so callers can measure it.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}

	return result.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return Subtle.Render(left + " ◆ " + right)
}
