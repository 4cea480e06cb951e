package style

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/compat"
	"gopkg.in/yaml.v3"
)

// Color palette, standardized across the blockrt CLI.
var (
	ChameleonColor = "#3A7D44"
	ForestColor    = "#1E5128"
	SunsetColor    = "#D88A60"
	LanternColor   = "#F4D58D"
	NavyColor      = "#1B263B"
	WarmGrayColor  = "#CED4DA"

	LightWarmGrayColor = "#8B949E"

	ErrorColor = compat.AdaptiveColor{
		Light: lipgloss.Color(SunsetColor),
		Dark:  lipgloss.Color(SunsetColor),
	}

	WarningColor = compat.AdaptiveColor{
		Light: lipgloss.Color("#E6A645"),
		Dark:  lipgloss.Color(LanternColor),
	}

	SuccessColor = compat.AdaptiveColor{
		Light: lipgloss.Color(ForestColor),
		Dark:  lipgloss.Color(ChameleonColor),
	}

	InfoColor = compat.AdaptiveColor{
		Light: lipgloss.Color(NavyColor),
		Dark:  lipgloss.Color(LanternColor),
	}

	MutedColor = compat.AdaptiveColor{
		Light: lipgloss.Color(LightWarmGrayColor),
		Dark:  lipgloss.Color(WarmGrayColor),
	}

	AccentColor = compat.AdaptiveColor{
		Light: lipgloss.Color(ChameleonColor),
		Dark:  lipgloss.Color(LanternColor),
	}
)

var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	AccentStyle  = lipgloss.NewStyle().Foreground(AccentColor)

	BlockIDStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	// Block-status styles for the run command's step-by-step trace.
	BlockHighlightedStyle = lipgloss.NewStyle().Foreground(InfoColor)
	BlockSteppedStyle     = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	BlockFailedStyle      = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
)

// FormatBlockID renders a block id the way a file path gets rendered in
// a parser error: bold, accented.
func FormatBlockID(id string) string { return BlockIDStyle.Render(id) }

// PrintJSON writes data as indented JSON, used by the metadata, run and
// version commands under --output json.
func PrintJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintYAML writes data as YAML, used under --output yaml.
func PrintYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

func SuccessIcon() string { return SuccessStyle.Render("✓") }
func ErrorIcon() string   { return ErrorStyle.Render("✗") }
func WarningIcon() string { return WarningStyle.Render("⚠") }
func InfoIcon() string    { return InfoStyle.Render("ℹ") }

// Success prints a styled success line to w.
func Success(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", SuccessIcon(), lipgloss.NewStyle().Foreground(SuccessColor).Render(message))
}

// Error prints a styled error line to w.
func Error(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorIcon(), lipgloss.NewStyle().Foreground(ErrorColor).Render(message))
}

// Warning prints a styled warning line to w.
func Warning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", WarningIcon(), lipgloss.NewStyle().Foreground(WarningColor).Render(message))
}

// Info prints a styled info line to w.
func Info(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", InfoIcon(), lipgloss.NewStyle().Foreground(InfoColor).Render(message))
}

// Muted prints a de-emphasized line to w, used for variable/queue dumps.
func Muted(w io.Writer, message string) {
	fmt.Fprintf(w, "%s\n", MutedStyle.Render(message))
}
