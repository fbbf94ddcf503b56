package tablet

import (
	"strings"
	"unicode/utf8"

	"kastelo.dev/sheetwork/config"
)

const (
	addressLineLen = 20
	addressMaxLen  = 50
	addressCutLen  = 47
	ellipsis       = "..."
	addressIndent  = "\n\t"
)

// Sizing derives the display font size from the amount of text on a tablet.
type Sizing struct {
	Max, Min int
	// FreeLen is the total length that still gets the maximum size.
	FreeLen int
	// Step is the number of characters per point of shrinkage.
	Step int
}

// DefaultSizing is the sizing used by the stock template.
var DefaultSizing = Sizing{Max: 27, Min: 10, FreeLen: 30, Step: 5}

// SizingFrom returns the sizing configured for the tablet tool.
func SizingFrom(c config.Tablet) Sizing {
	return Sizing{Max: c.MaxFontSize, Min: c.MinFontSize, FreeLen: c.SizeFreeLen, Step: c.SizeStep}
}

// FontSize returns the point size for the given total text length.
func (s Sizing) FontSize(total int) int {
	if total <= s.FreeLen {
		return s.Max
	}
	step := max(s.Step, 1)
	return max(s.Min, s.Max-(total-s.FreeLen)/step)
}

// FontSize applies DefaultSizing.
func FontSize(total int) int {
	return DefaultSizing.FontSize(total)
}

// FormatAncestors lays out ancestor names on at most two lines: up to two
// names on the first, everything else on the second.
func FormatAncestors(names []string) string {
	if len(names) <= 2 {
		return strings.Join(names, " ")
	}
	return strings.Join(names[:2], " ") + "\n" + strings.Join(names[2:], " ")
}

// FormatAddress wraps an address into indented lines of twenty characters
// and caps the result at fifty characters.
func FormatAddress(address string) string {
	rs := []rune(address)
	if len(rs) <= addressLineLen {
		return address
	}

	var b strings.Builder
	for i := 0; i < len(rs); i += addressLineLen {
		if i > 0 {
			b.WriteString(addressIndent)
		}
		b.WriteString(string(rs[i:min(i+addressLineLen, len(rs))]))
	}

	res := []rune(b.String())
	if len(res) > addressMaxLen {
		return string(res[:addressCutLen]) + ellipsis
	}
	return string(res)
}

// RenderContext holds the presentation values of one row.
type RenderContext struct {
	Name      string
	Ancestors string
	Address   string
	Date      string
	FontSize  int
}

// NewRenderContext formats a row for rendering. The font size shrinks with
// the combined length of everything printed.
func NewRenderContext(row SourceRow, date string, s Sizing) RenderContext {
	rc := RenderContext{
		Name:      row.Name,
		Ancestors: FormatAncestors(row.Ancestors),
		Address:   FormatAddress(row.Address),
		Date:      date,
	}
	total := utf8.RuneCountInString(rc.Ancestors) +
		utf8.RuneCountInString(rc.Address) +
		utf8.RuneCountInString(rc.Name) +
		utf8.RuneCountInString(rc.Date)
	rc.FontSize = s.FontSize(total)
	return rc
}

// Values maps the template placeholders to this context.
func (rc RenderContext) Values(t config.Tokens) map[string]string {
	return map[string]string{
		t.Name:      rc.Name,
		t.Address:   rc.Address,
		t.Date:      rc.Date,
		t.Ancestors: rc.Ancestors,
	}
}
