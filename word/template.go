// Package word fills .docx templates. Placeholders are matched against the
// concatenated text of each paragraph, so a placeholder that Word split over
// several formatting runs is still found.
package word

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/nguyenthenguyen/docx"
)

// ErrNoBody is returned for a template whose document part has no w:body.
var ErrNoBody = errors.New("document has no body")

// Template is a parsed .docx template. One Template renders any number of
// documents; each render starts from a fresh copy of the archive.
type Template struct {
	data []byte
}

// OpenTemplate reads a template from disk.
func OpenTemplate(path string) (*Template, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseTemplate(bs)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}

// ParseTemplate reads a template from the raw bytes of a .docx file.
func ParseTemplate(data []byte) (*Template, error) {
	t := &Template{data: data}
	d, err := t.open()
	if err != nil {
		return nil, err
	}
	if _, _, err := parseContent(d.GetContent()); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) open() (*docx.Docx, error) {
	src, err := docx.ReadDocxFromMemory(bytes.NewReader(t.data), int64(len(t.data)))
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return src.Editable(), nil
}

// Render returns a copy of the template with every placeholder key in values
// replaced by its value and style applied to all paragraphs.
func (t *Template) Render(values map[string]string, style Style) (*docx.Docx, error) {
	d, err := t.open()
	if err != nil {
		return nil, err
	}

	doc, body, err := parseContent(d.GetContent())
	if err != nil {
		return nil, err
	}

	keys := placeholderKeys(values)
	for _, p := range body.FindElements(".//w:p") {
		replaceInParagraph(p, keys, values)
		style.applyParagraph(p)
	}
	style.applySection(body)

	content, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	d.SetContent(content)

	for _, k := range keys {
		if err := d.ReplaceHeader(k, values[k]); err != nil {
			return nil, fmt.Errorf("header %s: %w", k, err)
		}
		if err := d.ReplaceFooter(k, values[k]); err != nil {
			return nil, fmt.Errorf("footer %s: %w", k, err)
		}
	}

	return d, nil
}

// RenderFile renders the template and writes the result to path, replacing
// any existing file.
func (t *Template) RenderFile(path string, values map[string]string, style Style) error {
	d, err := t.Render(values, style)
	if err != nil {
		return err
	}
	return d.WriteToFile(path)
}

func parseContent(content string) (*etree.Document, *etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return nil, nil, fmt.Errorf("parse document.xml: %w", err)
	}
	body := doc.FindElement("//w:body")
	if body == nil {
		return nil, nil, ErrNoBody
	}
	return doc, body, nil
}

// placeholderKeys returns the non-empty keys, longest first, so that a key
// which is a prefix of another never shadows it.
func placeholderKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool {
		if len(keys[a]) != len(keys[b]) {
			return len(keys[a]) > len(keys[b])
		}
		return keys[a] < keys[b]
	})
	return keys
}

type segment struct {
	t     *etree.Element
	start int
	text  string
}

type match struct {
	start, end int
	value      string
}

func replaceInParagraph(p *etree.Element, keys []string, values map[string]string) {
	var segs []segment
	var full strings.Builder
	for _, r := range runs(p) {
		for _, t := range r.SelectElements("w:t") {
			text := t.Text()
			segs = append(segs, segment{t: t, start: full.Len(), text: text})
			full.WriteString(text)
		}
	}

	text := full.String()
	matches := findPlaceholders(text, keys, values)
	if len(matches) == 0 {
		return
	}

	for _, s := range segs {
		end := s.start + len(s.text)
		pos := s.start
		touched := false
		var b strings.Builder
		for _, m := range matches {
			if m.end <= s.start || m.start >= end {
				continue
			}
			touched = true
			if m.start > pos {
				b.WriteString(text[pos:m.start])
			}
			// The value lands in the run holding the first character of
			// the placeholder; later runs only lose their share of it.
			if m.start >= s.start {
				b.WriteString(m.value)
			}
			pos = min(m.end, end)
		}
		if !touched {
			continue
		}
		if pos < end {
			b.WriteString(text[pos:end])
		}
		writeText(s.t, b.String())
	}
}

func findPlaceholders(text string, keys []string, values map[string]string) []match {
	var res []match
	for i := 0; i < len(text); {
		found := false
		for _, k := range keys {
			if strings.HasPrefix(text[i:], k) {
				res = append(res, match{start: i, end: i + len(k), value: values[k]})
				i += len(k)
				found = true
				break
			}
		}
		if !found {
			i++
		}
	}
	return res
}

// runs returns the text runs of a paragraph, including those wrapped in
// hyperlinks, smart tags and tracked insertions. Runs of nested paragraphs
// (text boxes) belong to those paragraphs.
func runs(p *etree.Element) []*etree.Element {
	var res []*etree.Element
	for _, c := range p.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case "r":
			res = append(res, c)
		case "hyperlink", "smartTag", "ins", "customXml":
			res = append(res, c.SelectElements("w:r")...)
		}
	}
	return res
}

// writeText replaces a w:t element with the given text. Line breaks and tabs
// become w:br and w:tab siblings inside the same run.
func writeText(t *etree.Element, text string) {
	run := t.Parent()
	idx := t.Index()
	run.RemoveChildAt(idx)

	var elems []*etree.Element
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			elems = append(elems, newText(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case '\n':
			flush()
			elems = append(elems, etree.NewElement("w:br"))
		case '\t':
			flush()
			elems = append(elems, etree.NewElement("w:tab"))
		case '\r':
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	for i, e := range elems {
		run.InsertChildAt(idx+i, e)
	}
}

func newText(s string) *etree.Element {
	t := etree.NewElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(s)
	return t
}
