package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/client/services"
)

// palette holds the ANSI sequences used for one theme.
type palette struct {
	title  string
	dim    string
	accent string
	reset  string
}

// paletteFor maps the theme preference to output colours. SYSTEM leaves
// the terminal's own colours alone.
func paletteFor(t models.Theme) palette {
	switch t {
	case models.ThemeLight:
		return palette{title: "\x1b[1;34m", dim: "\x1b[90m", accent: "\x1b[35m", reset: "\x1b[0m"}
	case models.ThemeDark:
		return palette{title: "\x1b[1;96m", dim: "\x1b[37m", accent: "\x1b[93m", reset: "\x1b[0m"}
	default:
		return palette{}
	}
}

func (p palette) paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + p.reset
}

func (a *App) palette() palette {
	return paletteFor(a.prefs.Theme())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) heading(title string) {
	p := a.palette()
	a.printf("%s\n", p.paint(p.title, title))
}

// itemLine renders one item as a single line:
//
//	S01E02 Pilot (2008)  [id]  ✓ ★
func itemLine(p palette, it models.Item) string {
	var b strings.Builder

	if it.Type == models.KindEpisode && it.IndexNumber != nil {
		season := 0
		if it.ParentIndexNumber != nil {
			season = *it.ParentIndexNumber
		}
		fmt.Fprintf(&b, "S%02dE%02d ", season, *it.IndexNumber)
	}
	if it.Type == models.KindEpisode && it.SeriesName != "" {
		b.WriteString(it.SeriesName + " - ")
	}
	b.WriteString(it.Name)
	if it.ProductionYear != nil {
		b.WriteString(" (" + strconv.Itoa(*it.ProductionYear) + ")")
	}
	b.WriteString("  " + p.paint(p.dim, "["+it.ID+"]"))

	var marks []string
	if it.Played() {
		marks = append(marks, "✓")
	}
	if it.Favorite() {
		marks = append(marks, "★")
	}
	if len(marks) > 0 {
		b.WriteString("  " + p.paint(p.accent, strings.Join(marks, " ")))
	}
	return b.String()
}

func (a *App) printItems(items []models.Item) {
	p := a.palette()
	for _, it := range items {
		a.printf("  %s\n", itemLine(p, it))
	}
}

// printStatus reports a resource that has nothing to list and returns true.
// Ready resources return false so the caller renders the data.
func printStatus[T any](a *App, r services.Resource[T], empty string) bool {
	switch r.Status {
	case services.StatusReady:
		return false
	case services.StatusEmpty:
		a.printf("  %s\n", a.palette().paint(a.palette().dim, empty))
	case services.StatusFailed:
		a.printf("  failed to load: %v\n", r.Err)
	default:
		a.printf("  %s\n", r.Status)
	}
	return true
}

func overview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 400 {
		s = s[:400] + "…"
	}
	return s
}
