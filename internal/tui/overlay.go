// ABOUTME: overlayRender composites a modal box centered on a background terminal view
// ABOUTME: Column math skips ANSI escapes and measures runes with go-runewidth

package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// overlayRender composites overlay text centered on top of background text.
// Background lines outside the overlay region are preserved.
func overlayRender(background, overlay string, termWidth, termHeight int) string {
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < termHeight {
		bgLines = append(bgLines, "")
	}
	if len(bgLines) > termHeight {
		bgLines = bgLines[:termHeight]
	}

	ovLines := strings.Split(overlay, "\n")
	ovWidth := 0
	for _, l := range ovLines {
		ovWidth = max(ovWidth, visibleWidth(l))
	}

	startRow := max((termHeight-len(ovLines))/2, 0)
	startCol := max((termWidth-ovWidth)/2, 0)

	for i, ovLine := range ovLines {
		row := startRow + i
		if row >= termHeight {
			break
		}

		bgLine := bgLines[row]
		if w := visibleWidth(bgLine); w < startCol {
			bgLine += strings.Repeat(" ", startCol-w)
		}

		prefix := truncateVisual(bgLine, startCol)
		suffix := ""
		if after := startCol + visibleWidth(ovLine); after < termWidth {
			suffix = sliceFromCol(bgLines[row], after)
		}
		// Reset attributes so the overlay does not inherit background styling.
		bgLines[row] = prefix + "\x1b[0m" + ovLine + "\x1b[0m" + suffix
	}

	return strings.Join(bgLines, "\n")
}

// visibleWidth returns the terminal column width of s, ignoring ANSI escapes.
func visibleWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

// stripANSI removes CSI escape sequences from s.
func stripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if isFinalByte(r) {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateVisual returns the prefix of s that occupies at most maxCols
// visible columns. Escapes inside the prefix are kept.
func truncateVisual(s string, maxCols int) string {
	if maxCols <= 0 {
		return ""
	}
	col := 0
	inEsc := false
	for i, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isFinalByte(r) {
				inEsc = false
			}
			continue
		}
		w := runewidth.RuneWidth(r)
		if col+w > maxCols {
			return s[:i]
		}
		col += w
	}
	return s
}

// sliceFromCol returns the portion of s starting at visible column startCol.
func sliceFromCol(s string, startCol int) string {
	col := 0
	inEsc := false
	for i, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isFinalByte(r) {
				inEsc = false
			}
			continue
		}
		if col >= startCol {
			return s[i:]
		}
		col += runewidth.RuneWidth(r)
	}
	return ""
}

func isFinalByte(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
