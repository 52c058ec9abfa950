package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/akiba/internal/tui/styles"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(styles.Sakura).Bold(true).Align(lipgloss.Center)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	errorStyle   = styles.ErrorStyle
	successStyle = styles.SuccessStyle
	dimStyle     = styles.DimStyle
)

// newTable builds the borderless table used by every listing command
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	return styles.Truncate(strings.Join(strings.Fields(s), " "), maxLen)
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func printEmpty(what string) {
	fmt.Println(dimStyle.Render("No " + what + "."))
}

// printIncomplete notes that a listing stopped early
func printIncomplete(err error) {
	if err != nil {
		fmt.Println(errorStyle.Render("results incomplete: " + err.Error()))
	}
}
