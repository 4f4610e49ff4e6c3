package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary actions
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// stdout receives all command output; tests swap it.
var stdout io.Writer = os.Stdout

type status int

const (
	statusSuccess status = iota
	statusError
	statusWarning
	statusInfo
)

var statusMarks = map[status]struct {
	icon string
	mark lipgloss.Style
	text *lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorGreen), nil},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorRed), nil},
	statusWarning: {iconWarning, styleIconWarning, &StyleWarning},
	statusInfo:    {iconInfo, styleIconInfo, nil},
}

func printStatus(s status, format string, args ...any) {
	m := statusMarks[s]
	msg := fmt.Sprintf(format, args...)
	if m.text != nil {
		msg = m.text.Render(msg)
	}
	fmt.Fprintln(stdout, m.mark.Render(m.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printError(format string, args ...any)   { printStatus(statusError, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// keyValue renders a labeled value.
func keyValue(key, value string) string {
	return styleKey.Render(key) + " " + StyleValue.Render(value)
}

// =============================================================================
// Stats Display
// =============================================================================

// statsLine joins graph statistics into one dim line.
func statsLine(nodeCount, edgeCount, expanded int) string {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}
	if expanded > 0 {
		parts = append(parts, fmt.Sprintf("%d expanded", expanded))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// printStats prints graph statistics on a single line.
func printStats(nodeCount, edgeCount, expanded int) {
	fmt.Fprintln(stdout, "  "+statsLine(nodeCount, edgeCount, expanded))
}
