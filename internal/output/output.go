// Package output provides styled terminal output helpers (success, error,
// warning, tree node formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/marcus/mfx/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	favStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	statusStyles = map[models.ProfileStatus]lipgloss.Style{
		models.StatusActive:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusInactive:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.StatusUnverified: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

const defaultWidth = 80

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeRemote       = "remote_error"
	ErrCodeStorage      = "storage_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	data, _ := json.Marshal(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
	fmt.Println(string(data))
}

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// FormatStatus renders a profile status with its color
func FormatStatus(s models.ProfileStatus) string {
	if s == models.StatusUnset {
		return ""
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render("[" + string(s) + "]")
	}
	return string(s)
}

// StatusBadge returns a status indicator with symbol
// e.g., "● active", "✗ inactive", "○ unverified"
func StatusBadge(s models.ProfileStatus) string {
	symbols := map[models.ProfileStatus]string{
		models.StatusActive:     "●",
		models.StatusInactive:   "✗",
		models.StatusUnverified: "○",
	}
	symbol, ok := symbols[s]
	if !ok {
		symbol = "?"
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(fmt.Sprintf("%s %s", symbol, s))
	}
	return fmt.Sprintf("%s %s", symbol, s)
}

// IconGlyph maps a node icon to the glyph drawn in the terminal
func IconGlyph(i models.Icon) string {
	switch i {
	case models.IconFolderClosed:
		return "▸"
	case models.IconFolderOpen:
		return "▾"
	case models.IconSessionClosed, models.IconSessionOpen:
		return "◇"
	case models.IconSessionActive:
		return "◆"
	case models.IconSessionInactive:
		return "◈"
	case models.IconFavoriteClosed, models.IconFavoriteOpen:
		return "★"
	case models.IconJob:
		return "⚙"
	case models.IconDocument:
		return "·"
	}
	return " "
}

// FormatNode renders a node as a single tree line at the given depth
func FormatNode(n *models.Node, depth int) string {
	var parts []string
	parts = append(parts, strings.Repeat("  ", depth)+IconGlyph(n.Icon))
	switch {
	case n.Kind == models.KindSession, n.Kind == models.KindFavoritesRoot:
		parts = append(parts, titleStyle.Render(n.Label))
	case n.Kind == models.KindFavoriteGroup:
		parts = append(parts, favStyle.Render(n.Label))
	default:
		parts = append(parts, n.Label)
	}
	if n.Pattern != "" {
		parts = append(parts, subtleStyle.Render(n.Pattern))
	}
	if n.Tag.Status != models.StatusUnset {
		parts = append(parts, FormatStatus(n.Tag.Status))
	}
	parts = append(parts, subtleStyle.Render(n.ContextValue()))
	return strings.Join(parts, " ")
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nSEARCH HISTORY:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// BulletList formats items as a bulleted list with optional indentation
func BulletList(items []string, indent int) []string {
	prefix := strings.Repeat(" ", indent)
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = prefix + "- " + item
	}
	return result
}
