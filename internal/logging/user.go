package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with glyph prefixes.
// All of them write to UserOutput (stderr by default): stdout belongs to
// the sandboxed command and is passed through untouched.

// UserOutput receives user-facing status lines.
var UserOutput io.Writer = os.Stderr

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
)

func userLine(glyph string, style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintf(UserOutput, "%s %s\n", style.Render(glyph), fmt.Sprintf(format, args...))
}

// UserInfo prints an info message.
func UserInfo(format string, args ...interface{}) {
	userLine("ℹ", infoStyle, format, args...)
}

// UserSuccess prints a success message.
func UserSuccess(format string, args ...interface{}) {
	userLine("✓", successStyle, format, args...)
}

// UserWarning prints a warning message.
func UserWarning(format string, args ...interface{}) {
	userLine("⚠", warningStyle, format, args...)
}

// UserError prints an error message.
func UserError(format string, args ...interface{}) {
	userLine("✗", errorStyle, format, args...)
}
