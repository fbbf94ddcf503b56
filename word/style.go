package word

import (
	"math"
	"slices"
	"strconv"

	"github.com/beevik/etree"
)

// Style is the uniform formatting applied to every paragraph of a rendered
// document.
type Style struct {
	Font string
	// Size in points.
	Size int
	// LineSpacing as a multiple of single spacing.
	LineSpacing float64
	// Margin in inches on all four sides. Zero leaves the margins alone.
	Margin float64
}

// Child order mandated by the WordprocessingML schema. Elements must be
// inserted at their place or Word refuses the file.
var (
	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr",
		"widowControl", "numPr", "suppressLineNumbers", "pBdr", "shd", "tabs",
		"suppressAutoHyphens", "kinsoku", "wordWrap", "overflowPunct",
		"topLinePunct", "autoSpaceDE", "autoSpaceDN", "bidi", "adjustRightInd",
		"snapToGrid", "spacing", "ind", "contextualSpacing", "mirrorIndents",
		"suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr",
		"pPrChange",
	}
	rPrOrder = []string{
		"ins", "del", "moveFrom", "moveTo", "rStyle", "rFonts", "b", "bCs", "i",
		"iCs", "caps", "smallCaps", "strike", "dstrike", "outline", "shadow",
		"emboss", "imprint", "noProof", "snapToGrid", "vanish", "webHidden",
		"color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight",
		"u", "effect", "bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em",
		"lang", "eastAsianLayout", "specVanish", "oMath",
	}
	sectPrOrder = []string{
		"headerReference", "footerReference", "footnotePr", "endnotePr", "type",
		"pgSz", "pgMar", "paperSrc", "pgBorders", "lnNumType", "pgNumType",
		"cols", "formProt", "vAlign", "noEndnote", "titlePg", "textDirection",
		"bidi", "rtlGutter", "docGrid", "printerSettings", "sectPrChange",
	}
)

// Theme font attributes take precedence over explicit ones, so they are
// dropped when a font is set.
var themeFontAttrs = []string{"w:asciiTheme", "w:hAnsiTheme", "w:eastAsiaTheme", "w:cstheme"}

func (s Style) applyParagraph(p *etree.Element) {
	pPr := firstChild(p, "pPr")
	ensureChild(pPr, "keepNext", pPrOrder)
	ensureChild(pPr, "keepLines", pPrOrder)

	sp := ensureChild(pPr, "spacing", pPrOrder)
	sp.CreateAttr("w:before", "0")
	sp.CreateAttr("w:after", "0")
	sp.RemoveAttr("w:beforeAutospacing")
	sp.RemoveAttr("w:afterAutospacing")
	if s.LineSpacing > 0 {
		sp.CreateAttr("w:line", strconv.Itoa(int(math.Round(s.LineSpacing*240))))
		sp.CreateAttr("w:lineRule", "auto")
	}

	// The paragraph mark carries its own run properties; without them an
	// empty paragraph keeps the template's height.
	s.applyRun(ensureChild(pPr, "rPr", pPrOrder))
	for _, r := range runs(p) {
		s.applyRun(firstChild(r, "rPr"))
	}
}

func (s Style) applyRun(rPr *etree.Element) {
	if s.Font != "" {
		f := ensureChild(rPr, "rFonts", rPrOrder)
		for _, a := range themeFontAttrs {
			f.RemoveAttr(a)
		}
		f.CreateAttr("w:ascii", s.Font)
		f.CreateAttr("w:hAnsi", s.Font)
		f.CreateAttr("w:eastAsia", s.Font)
		f.CreateAttr("w:cs", s.Font)
	}
	if s.Size > 0 {
		half := strconv.Itoa(s.Size * 2)
		ensureChild(rPr, "sz", rPrOrder).CreateAttr("w:val", half)
		ensureChild(rPr, "szCs", rPrOrder).CreateAttr("w:val", half)
	}
}

func (s Style) applySection(body *etree.Element) {
	if s.Margin <= 0 {
		return
	}
	sect := body.SelectElement("w:sectPr")
	if sect == nil {
		sect = etree.NewElement("w:sectPr")
		body.AddChild(sect)
	}
	mar := ensureChild(sect, "pgMar", sectPrOrder)
	twips := strconv.Itoa(int(math.Round(s.Margin * 1440)))
	for _, side := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		mar.CreateAttr(side, twips)
	}
	for _, a := range []string{"w:header", "w:footer"} {
		if mar.SelectAttr(a) == nil {
			mar.CreateAttr(a, "720")
		}
	}
	if mar.SelectAttr("w:gutter") == nil {
		mar.CreateAttr("w:gutter", "0")
	}
}

// firstChild returns the w:tag child of parent, creating it as the first
// child if missing.
func firstChild(parent *etree.Element, tag string) *etree.Element {
	if e := parent.SelectElement("w:" + tag); e != nil {
		return e
	}
	e := etree.NewElement("w:" + tag)
	parent.InsertChildAt(0, e)
	return e
}

// ensureChild returns the w:tag child of parent, creating it before the
// first sibling that order places after it.
func ensureChild(parent *etree.Element, tag string, order []string) *etree.Element {
	if e := parent.SelectElement("w:" + tag); e != nil {
		return e
	}
	e := etree.NewElement("w:" + tag)
	rank := slices.Index(order, tag)
	at := len(parent.Child)
	for _, c := range parent.ChildElements() {
		if c.Space == "w" && slices.Index(order, c.Tag) > rank {
			at = c.Index()
			break
		}
	}
	parent.InsertChildAt(at, e)
	return e
}
