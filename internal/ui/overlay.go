// Package ui provides shared presentation helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle applies a dim gray color to background content behind dialogs.
// Existing ANSI codes are stripped first because SGR 2 (faint) doesn't
// reliably combine with color codes in most terminals.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		w := ansi.StringWidth(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// compositeRow overlays boxLine onto bgLine at position startX:
// dimmed-left-segment + boxLine + dimmed-right-segment.
func compositeRow(bgLine, boxLine string, startX, boxWidth, totalWidth int) string {
	var result strings.Builder

	stripped := ansi.Strip(bgLine)
	bgWidth := ansi.StringWidth(stripped)

	if startX > 0 {
		leftSeg := ansi.Truncate(stripped, startX, "")
		leftWidth := ansi.StringWidth(leftSeg)
		result.WriteString(DimStyle.Render(leftSeg))
		if leftWidth < startX {
			result.WriteString(strings.Repeat(" ", startX-leftWidth))
		}
	}

	result.WriteString(boxLine)

	rightStartX := startX + boxWidth
	if rightStartX < totalWidth && bgWidth > rightStartX {
		rightSeg := ansi.Cut(stripped, rightStartX, bgWidth)
		result.WriteString(DimStyle.Render(rightSeg))
	}

	return result.String()
}

// Overlay composites a dialog box on top of a dimmed background. The box is
// centered, with dimmed background visible on all sides.
func Overlay(background, box string, width, height int) string {
	bgLines := strings.Split(background, "\n")
	boxLines := strings.Split(box, "\n")

	boxWidth := maxLineWidth(boxLines)
	boxHeight := len(boxLines)
	startX := (width - boxWidth) / 2
	startY := (height - boxHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	result := make([]string, 0, height)
	for y := 0; y < height; y++ {
		bgLine := ""
		if y < len(bgLines) {
			bgLine = bgLines[y]
		}

		boxRow := y - startY
		if boxRow >= 0 && boxRow < boxHeight {
			result = append(result, compositeRow(bgLine, boxLines[boxRow], startX, boxWidth, width))
		} else {
			result = append(result, DimStyle.Render(ansi.Strip(bgLine)))
		}
	}

	return strings.Join(result, "\n")
}
