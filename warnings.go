package linecolors

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem met during extraction. The text was still
// extracted, but parts of a page may be missing or imprecise.
type Warning struct {
	// Page is the 1-indexed page the warning belongs to, or 0 for the
	// whole document.
	Page    int
	Message string
}

// String returns the warning with its page, if any.
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// parseWarnings turns "page N: message" strings from the stripper into
// warnings. pageMap translates the stripper's page numbers when it ran over
// a subset of pages.
func parseWarnings(raw []string, pageMap []int) []Warning {
	warnings := make([]Warning, 0, len(raw))
	for _, s := range raw {
		var n int
		var w Warning
		if _, err := fmt.Sscanf(s, "page %d:", &n); err == nil {
			w.Page = n
			if n >= 1 && n <= len(pageMap) {
				w.Page = pageMap[n-1] + 1
			}
			w.Message = strings.TrimSpace(s[strings.Index(s, ":")+1:])
		} else {
			w.Message = s
		}
		warnings = append(warnings, w)
	}
	return warnings
}
