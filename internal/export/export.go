// Package export renders a ledger view as downloadable PDF, XLSX, or CSV.
// Renderers are pure: they transform an Input snapshot and never touch
// session state.
package export

import (
	"regexp"
	"strings"
	"time"

	"registro/internal/core"
)

// Input is the snapshot a renderer works from: the (possibly filtered)
// entry list, totals over that same subset, and document metadata.
type Input struct {
	Organization string
	Entries      []core.Entry
	Totals       core.Totals
	GeneratedAt  time.Time
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename collapses whitespace to underscores and strips anything
// outside [word, dash, dot].
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}

// Filename builds the download name: <org>_movements_<date>.<ext>.
func Filename(organization, ext string, generatedAt time.Time) string {
	return SanitizeFilename(organization) + "_movements_" + generatedAt.Format("2006-01-02") + "." + ext
}

// kindLabel is the display label used in exported files. The stored kind is
// the wire value; exports show the Spanish label the congregation reads.
func kindLabel(k core.Kind) string {
	if k == core.KindExpense {
		return "Egreso"
	}
	return "Ingreso"
}
