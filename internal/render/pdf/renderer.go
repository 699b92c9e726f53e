// Package pdf renders a StyleGuideData record as a printable A4 document.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

const (
	contentType = "application/pdf"
	extension   = "pdf"

	margin     = 18.0
	lineHeight = 5.0
	fontFamily = "Helvetica"
)

var (
	navyDark      = styleguide.RGB{R: 0x02, G: 0x1A, B: 0x2E}
	textPrimary   = styleguide.RGB{R: 0x37, G: 0x41, B: 0x51}
	textSecondary = styleguide.RGB{R: 0x6B, G: 0x72, B: 0x80}
	tableHeaderBg = styleguide.RGB{R: 0xE8, G: 0xF4, B: 0xFD}
	grayBorder    = styleguide.RGB{R: 0xE5, G: 0xE7, B: 0xEB}
)

// Renderer produces PDF bytes with gofpdf core fonts.
type Renderer struct {
	now func() time.Time
}

// New returns a Renderer.
func New() *Renderer {
	return &Renderer{now: time.Now}
}

// ContentType implements styleguide.Renderer.
func (r *Renderer) ContentType() string { return contentType }

// Extension implements styleguide.Renderer.
func (r *Renderer) Extension() string { return extension }

// Filename is the attachment name for a guide: "<domain>-style-guide.pdf".
func Filename(data styleguide.StyleGuideData) string {
	domain := strings.TrimSpace(data.Meta.Domain)
	if domain == "" {
		domain = "site"
	}
	return domain + "-style-guide." + extension
}

// Render lays out every section of data.
func (r *Renderer) Render(data styleguide.StyleGuideData) ([]byte, error) {
	doc := newDocument(data, r.now())

	doc.cover()
	doc.contents()
	doc.introduction()
	doc.brandIdentity()
	doc.contentStyle()
	doc.uiComponents()
	doc.layout()
	doc.accessibility()
	doc.resources()

	if err := doc.pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout document: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}

type document struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	data styleguide.StyleGuideData
}

func newDocument(data styleguide.StyleGuideData, now time.Time) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin+6)
	pdf.SetTitle(data.Brand.Name+" Style Guide", true)
	pdf.SetCreator("style-guide-generator", true)
	pdf.SetCreationDate(now)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), data: data}
	pdf.SetFooterFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "", 8)
		d.textColor(textSecondary)
		footer := fmt.Sprintf("%s Style Guide  v%s", data.Brand.Name, data.Meta.Version)
		pdf.CellFormat(0, 4, d.tr(footer), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 4, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	return d
}

func (d *document) cover() {
	p := d.pdf
	p.AddPage()
	p.SetY(60)
	p.SetFont(fontFamily, "B", 36)
	d.textColor(navyDark)
	p.MultiCell(0, 14, d.tr(d.data.Brand.Name), "", "L", false)
	p.SetFont(fontFamily, "", 18)
	d.textColor(textSecondary)
	p.MultiCell(0, 9, "Brand Style Guide", "", "L", false)
	p.Ln(12)

	swatches := append(append([]styleguide.Color{}, d.data.Colors.Primary...), d.data.Colors.Secondary...)
	if len(swatches) > 6 {
		swatches = swatches[:6]
	}
	x := margin
	for _, c := range swatches {
		d.fillColor(c.RGB)
		p.Rect(x, p.GetY(), 24, 24, "F")
		x += 28
	}
	p.Ln(40)

	p.SetFont(fontFamily, "", 10)
	d.textColor(textPrimary)
	d.line("Source: " + d.data.Meta.URL)
	d.line("Version " + d.data.Meta.Version + "  |  Analyzed " + d.data.Meta.AnalyzedAt)
}

func (d *document) contents() {
	d.pdf.AddPage()
	d.section("Table of Contents")
	for _, entry := range []string{
		"1.0 Introduction",
		"2.0 Brand Identity",
		"3.0 Content Style Guide",
		"4.0 UI Components",
		"5.0 Layout & Spacing",
		"6.0 Accessibility",
		"7.0 Resources",
	} {
		d.line(entry)
	}
}

func (d *document) introduction() {
	d.pdf.AddPage()
	d.section("1.0 Introduction")
	d.paragraph(d.data.Brand.Description)
	if d.data.Brand.MissionStatement != "" || d.data.Brand.VisionStatement != "" {
		d.subsection("1.1 Mission & Vision")
		d.paragraph(d.data.Brand.MissionStatement)
		d.paragraph(d.data.Brand.VisionStatement)
	}
	d.subsection("1.2 Design Principles")
	rows := make([][]string, 0, len(d.data.DesignPrinciples))
	for _, p := range d.data.DesignPrinciples {
		rows = append(rows, []string{p.Name, p.Description})
	}
	d.table([]string{"Principle", "Description"}, []float64{0.3, 0.7}, rows)
}

func (d *document) brandIdentity() {
	d.pdf.AddPage()
	d.section("2.0 Brand Identity")
	d.subsection("2.1 Logo Usage")
	d.table([]string{"Attribute", "Specification"}, []float64{0.3, 0.7}, attributeRows(d.data.Logo.Specifications))
	d.bullets(d.data.Logo.IncorrectUsage)

	d.subsection("2.2 Color Palette")
	d.colorTable("Primary Colors", d.data.Colors.Primary)
	d.colorTable("Secondary & Accent Colors", d.data.Colors.Secondary)
	d.colorTable("System Colors", systemColors(d.data.Colors.System))
	d.colorTable("Text Colors", d.data.Colors.Text)
	d.colorTable("Background Colors", d.data.Colors.Background)

	d.subsection("2.3 Typography")
	t := d.data.Typography
	fonts := [][]string{{t.PrimaryFont.Name, string(t.PrimaryFont.Category), t.PrimaryFont.Fallback}}
	for _, f := range []*styleguide.FontFamily{t.SecondaryFont, t.MonospaceFont} {
		if f != nil {
			fonts = append(fonts, []string{f.Name, string(f.Category), f.Fallback})
		}
	}
	d.table([]string{"Font", "Category", "Fallback"}, []float64{0.3, 0.2, 0.5}, fonts)
	scale := make([][]string, 0, len(t.Scale))
	for _, s := range t.Scale {
		scale = append(scale, []string{s.Element, s.Size, s.Weight, s.LineHeight, s.LetterSpacing})
	}
	d.table([]string{"Element", "Size", "Weight", "Line Height", "Letter Spacing"}, []float64{0.3, 0.15, 0.15, 0.2, 0.2}, scale)

	d.subsection("2.4 Iconography")
	d.table([]string{"Attribute", "Specification"}, []float64{0.3, 0.7}, attributeRows(d.data.Iconography.Specifications))
	d.bullets(d.data.Iconography.UsageGuidelines)

	d.subsection("2.5 Imagery Guidelines")
	images := make([][]string, 0, len(d.data.Imagery.Specifications))
	for _, s := range d.data.Imagery.Specifications {
		images = append(images, []string{s.Type, s.Format, s.MaxSize, s.Guidelines})
	}
	d.table([]string{"Type", "Format", "Max Size", "Guidelines"}, []float64{0.2, 0.2, 0.15, 0.45}, images)
}

func (d *document) contentStyle() {
	cs := d.data.ContentStyle
	d.pdf.AddPage()
	d.section("3.0 Content Style Guide")
	d.subsection("3.1 Voice and Tone")
	voice := make([][]string, 0, len(cs.VoiceCharacteristics))
	for _, v := range cs.VoiceCharacteristics {
		voice = append(voice, []string{v.Name, v.Description})
	}
	d.table([]string{"Characteristic", "Description"}, []float64{0.3, 0.7}, voice)
	tones := make([][]string, 0, len(cs.ToneVariations))
	for _, v := range cs.ToneVariations {
		tones = append(tones, []string{v.Context, v.Tone, v.Example})
	}
	d.table([]string{"Context", "Tone", "Example"}, []float64{0.25, 0.25, 0.5}, tones)

	d.subsection("3.2 Writing Guidelines")
	for _, g := range []struct {
		title string
		items []string
	}{
		{"Capitalization", cs.WritingGuidelines.Capitalization},
		{"Punctuation", cs.WritingGuidelines.Punctuation},
		{"Numbers", cs.WritingGuidelines.Numbers},
		{"Technical Writing", cs.WritingGuidelines.TechnicalWriting},
	} {
		d.label(g.title)
		d.bullets(g.items)
	}
}

func (d *document) uiComponents() {
	ui := d.data.UIComponents
	d.pdf.AddPage()
	d.section("4.0 UI Components")
	d.subsection("4.1 Buttons")
	variants := make([][]string, 0, len(ui.Buttons.Variants))
	for _, b := range ui.Buttons.Variants {
		variants = append(variants, []string{b.Variant, b.Background, b.Text, b.Border, b.UseCase})
	}
	d.table([]string{"Variant", "Background", "Text", "Border", "Use Case"}, []float64{0.16, 0.18, 0.16, 0.2, 0.3}, variants)
	sizes := make([][]string, 0, len(ui.Buttons.Sizes))
	for _, s := range ui.Buttons.Sizes {
		sizes = append(sizes, []string{s.Size, s.Height, s.PaddingH, s.FontSize, s.BorderRadius})
	}
	d.table([]string{"Size", "Height", "Padding", "Font Size", "Radius"}, []float64{0.2, 0.2, 0.2, 0.2, 0.2}, sizes)

	d.subsection("4.2 Cards")
	d.table([]string{"Property", "Value"}, []float64{0.35, 0.65}, propertyRows(ui.Cards))

	d.subsection("4.3 Forms")
	forms := make([][]string, 0, len(ui.Forms))
	for _, f := range ui.Forms {
		forms = append(forms, []string{f.Property, f.TextInput, f.Select, f.Checkbox})
	}
	d.table([]string{"Property", "Text Input", "Select", "Checkbox"}, []float64{0.22, 0.26, 0.26, 0.26}, forms)

	d.subsection("4.4 Navigation")
	nav := make([][]string, 0, len(ui.Navigation))
	for _, n := range ui.Navigation {
		nav = append(nav, []string{n.Element, n.Specification})
	}
	d.table([]string{"Element", "Specification"}, []float64{0.3, 0.7}, nav)
}

func (d *document) layout() {
	l := d.data.Layout
	d.pdf.AddPage()
	d.section("5.0 Layout & Spacing")
	d.subsection("5.1 Grid")
	d.table([]string{"Property", "Value"}, []float64{0.35, 0.65}, propertyRows(l.Grid))
	d.subsection("5.2 Breakpoints")
	bps := make([][]string, 0, len(l.Breakpoints))
	for _, b := range l.Breakpoints {
		bps = append(bps, []string{b.Name, b.Width, b.Columns, b.Layout})
	}
	d.table([]string{"Name", "Width", "Columns", "Layout"}, []float64{0.2, 0.25, 0.15, 0.4}, bps)
	d.subsection("5.3 Spacing Scale")
	spacing := make([][]string, 0, len(l.Spacing))
	for _, s := range l.Spacing {
		spacing = append(spacing, []string{s.Token, s.Value, s.UseCase})
	}
	d.table([]string{"Token", "Value", "Use Case"}, []float64{0.2, 0.2, 0.6}, spacing)
}

func (d *document) accessibility() {
	a := d.data.Accessibility
	d.pdf.AddPage()
	d.section("6.0 Accessibility")
	d.subsection("6.1 Color Contrast")
	pairs := make([][]string, 0, len(a.ContrastPairs))
	for _, c := range a.ContrastPairs {
		pairs = append(pairs, []string{c.Combination, c.Ratio, c.Status})
	}
	d.table([]string{"Combination", "Ratio", "WCAG Status"}, []float64{0.5, 0.2, 0.3}, pairs)
	for _, g := range []struct {
		title string
		items []string
	}{
		{"6.2 Keyboard Navigation", a.KeyboardNav},
		{"6.3 Screen Readers", a.ScreenReader},
		{"6.4 Visual Design", a.VisualDesign},
		{"6.5 Motion", a.Motion},
	} {
		d.subsection(g.title)
		d.bullets(g.items)
	}
}

func (d *document) resources() {
	d.pdf.AddPage()
	d.section("7.0 Resources")
	res := make([][]string, 0, len(d.data.Resources))
	for _, r := range d.data.Resources {
		res = append(res, []string{r.Name, r.Location})
	}
	d.table([]string{"Resource", "Location"}, []float64{0.35, 0.65}, res)
	d.subsection("Changelog")
	log := make([][]string, 0, len(d.data.Changelog))
	for _, c := range d.data.Changelog {
		log = append(log, []string{c.Version, c.Date, c.Changes})
	}
	d.table([]string{"Version", "Date", "Changes"}, []float64{0.15, 0.25, 0.6}, log)
}

func (d *document) section(title string) {
	d.pdf.SetFont(fontFamily, "B", 20)
	d.textColor(navyDark)
	d.pdf.MultiCell(0, 10, d.tr(title), "", "L", false)
	d.pdf.Ln(4)
}

func (d *document) subsection(title string) {
	d.pdf.Ln(3)
	d.pdf.SetFont(fontFamily, "B", 14)
	d.textColor(navyDark)
	d.pdf.MultiCell(0, 7, d.tr(title), "", "L", false)
	d.pdf.Ln(2)
}

func (d *document) label(title string) {
	d.pdf.SetFont(fontFamily, "B", 11)
	d.textColor(textPrimary)
	d.pdf.MultiCell(0, 6, d.tr(title), "", "L", false)
}

func (d *document) line(text string) {
	d.pdf.SetFont(fontFamily, "", 10)
	d.textColor(textPrimary)
	d.pdf.MultiCell(0, lineHeight+1, d.tr(text), "", "L", false)
}

func (d *document) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	d.line(text)
	d.pdf.Ln(2)
}

func (d *document) bullets(items []string) {
	d.pdf.SetFont(fontFamily, "", 10)
	d.textColor(textPrimary)
	for _, it := range items {
		d.pdf.MultiCell(0, lineHeight, d.tr("• "+it), "", "L", false)
	}
	d.pdf.Ln(2)
}

func (d *document) colorTable(title string, colors []styleguide.Color) {
	if len(colors) == 0 {
		return
	}
	d.label(title)
	const swatch = 8.0
	width := d.contentWidth()
	for _, c := range colors {
		d.breakIfNeeded(swatch + 2)
		y := d.pdf.GetY()
		d.fillColor(c.RGB)
		d.drawColor(grayBorder)
		d.pdf.Rect(margin, y, swatch, swatch, "FD")
		d.pdf.SetXY(margin+swatch+3, y+1.5)
		d.pdf.SetFont(fontFamily, "B", 10)
		d.textColor(textPrimary)
		d.pdf.CellFormat(width*0.25, lineHeight, d.tr(c.Name), "", 0, "L", false, 0, "")
		d.pdf.SetFont(fontFamily, "", 9)
		rgb := fmt.Sprintf("%s  rgb(%d, %d, %d)", c.Hex, c.RGB.R, c.RGB.G, c.RGB.B)
		d.pdf.CellFormat(width*0.35, lineHeight, rgb, "", 0, "L", false, 0, "")
		d.pdf.CellFormat(0, lineHeight, d.tr(c.Usage), "", 0, "L", false, 0, "")
		d.pdf.SetXY(margin, y+swatch+2)
	}
	d.pdf.Ln(2)
}

// table draws a bordered table; widths are fractions of the content width.
func (d *document) table(headers []string, widths []float64, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	total := d.contentWidth()
	cols := make([]float64, len(widths))
	for i, w := range widths {
		cols[i] = w * total
	}
	d.drawColor(grayBorder)

	d.pdf.SetFont(fontFamily, "B", 9)
	d.textColor(textPrimary)
	d.fillColor(tableHeaderBg)
	d.row(headers, cols, true)

	d.pdf.SetFont(fontFamily, "", 9)
	for _, r := range rows {
		d.row(r, cols, false)
	}
	d.pdf.Ln(3)
}

func (d *document) row(cells []string, cols []float64, fill bool) {
	const pad = 1.5
	lines := 1
	for i, c := range cells {
		if i >= len(cols) {
			break
		}
		if n := len(d.pdf.SplitLines([]byte(d.tr(c)), cols[i]-2*pad)); n > lines {
			lines = n
		}
	}
	h := float64(lines)*lineHeight + 2*pad
	d.breakIfNeeded(h)

	x, y := margin, d.pdf.GetY()
	style := "D"
	if fill {
		style = "FD"
	}
	for i, c := range cells {
		if i >= len(cols) {
			break
		}
		d.pdf.Rect(x, y, cols[i], h, style)
		d.pdf.SetXY(x+pad, y+pad)
		d.pdf.MultiCell(cols[i]-2*pad, lineHeight, d.tr(c), "", "L", false)
		x += cols[i]
	}
	d.pdf.SetXY(margin, y+h)
}

func (d *document) breakIfNeeded(h float64) {
	_, pageH := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	if d.pdf.GetY()+h > pageH-bottom {
		d.pdf.AddPage()
	}
}

func (d *document) contentWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - 2*margin
}

func (d *document) textColor(c styleguide.RGB) { d.pdf.SetTextColor(c.R, c.G, c.B) }
func (d *document) fillColor(c styleguide.RGB) { d.pdf.SetFillColor(c.R, c.G, c.B) }
func (d *document) drawColor(c styleguide.RGB) { d.pdf.SetDrawColor(c.R, c.G, c.B) }

func attributeRows(specs []styleguide.AttributeSpec) [][]string {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, []string{s.Attribute, s.Specification})
	}
	return rows
}

func propertyRows(props []styleguide.PropertyValue) [][]string {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{p.Property, p.Value})
	}
	return rows
}

func systemColors(s styleguide.SystemColors) []styleguide.Color {
	var out []styleguide.Color
	for _, c := range []*styleguide.Color{s.Success, s.Warning, s.Error, s.Info} {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}
