package layout

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"cvstudio/internal/assets"
	"cvstudio/internal/cv"
)

// Layout constants in millimetres on an A4 portrait page. These numbers are
// load-bearing: the on-screen preview mirrors them, so changing one here
// without changing the preview breaks the pixel-for-pixel match.
const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	marginX       = 14.0
	marginTop     = 34.0
	headerHeight  = 22.0
	bottomReserve = 14.0
	lineHeight    = 5.0
	sectionGap    = 5.0
	contentWidth  = pageWidth - 2*marginX

	contactWidth   = 60.0
	contactLeading = 4.4
	bulletIndent   = 3.0
)

const (
	embeddedFontFamily = "NotoSans"
	fallbackFontFamily = "Helvetica"

	brandName    = "CV Studio"
	brandTagline = "CV Builder"
)

// Engine renders documents to paginated PDFs. It holds the shared asset
// cache; everything else is per-render state.
type Engine struct {
	assets *assets.Cache
}

// NewEngine builds an engine over the given asset cache. A nil cache is
// allowed and renders with the built-in font and no logo.
func NewEngine(cache *assets.Cache) *Engine {
	return &Engine{assets: cache}
}

// Result is the outcome of one render pass. Warnings carry recoverable
// degradations (missing fonts or logo); the PDF is valid either way.
type Result struct {
	PDF      []byte
	Pages    int
	Warnings []string
}

// Render converts the document into a multi-page A4 PDF. Asset failures
// degrade the output but never fail the render; an error return indicates an
// internal PDF-generation fault.
func (e *Engine) Render(ctx context.Context, doc *cv.Document) (*Result, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	r := &renderer{pdf: pdf, tr: func(s string) string { return s }}
	var warnings []string

	if e.assets != nil {
		if regular, bold, err := e.assets.Fonts(ctx); err == nil {
			pdf.AddUTF8FontFromBytes(embeddedFontFamily, "", regular)
			pdf.AddUTF8FontFromBytes(embeddedFontFamily, "B", bold)
			r.unicode = true
		} else {
			warnings = append(warnings, fmt.Sprintf("embedded fonts unavailable, using built-in font: %v", err))
		}

		if logo, err := e.assets.Logo(ctx); err == nil {
			if imageType := sniffImageType(logo); imageType != "" {
				pdf.RegisterImageOptionsReader("brand-logo",
					gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(logo))
				r.hasLogo = true
			} else {
				warnings = append(warnings, "logo has unsupported image format, omitted")
			}
		} else {
			warnings = append(warnings, fmt.Sprintf("logo unavailable, omitted: %v", err))
		}
	} else {
		warnings = append(warnings, "no asset cache configured, using built-in font without logo")
	}

	// Core fonts are cp1252; route text through the codepage translator so
	// the fallback path stays readable for Latin-1 content.
	if !r.unicode {
		r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	r.renderDocument(doc)

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	return &Result{
		PDF:      buf.Bytes(),
		Pages:    pdf.PageCount(),
		Warnings: warnings,
	}, nil
}

// renderer carries the single mutable vertical cursor of a render pass. It
// never escapes Render.
type renderer struct {
	pdf     *gofpdf.Fpdf
	unicode bool
	hasLogo bool
	tr      func(string) string
	y       float64
}

func (r *renderer) setFont(size float64, style string) {
	family := fallbackFontFamily
	if r.unicode {
		family = embeddedFontFamily
	}
	r.pdf.SetFont(family, style, size)
}

func (r *renderer) text(x, y float64, s string) {
	r.pdf.Text(x, y, r.tr(s))
}

func (r *renderer) width(s string) float64 {
	return r.pdf.GetStringWidth(r.tr(s))
}

// drawHeader paints the branding band. It runs before any content write on
// every page, including the first.
func (r *renderer) drawHeader() {
	r.pdf.SetFillColor(79, 70, 229)
	r.pdf.Rect(0, 0, pageWidth, headerHeight, "F")

	textX := marginX
	if r.hasLogo {
		r.pdf.ImageOptions("brand-logo", marginX, 6, 10, 10, false, gofpdf.ImageOptions{}, 0, "")
		textX = marginX + 14
	}

	r.pdf.SetTextColor(255, 255, 255)
	r.setFont(12, "B")
	r.text(textX, 12, brandName)
	r.setFont(9, "")
	r.text(textX, 17, brandTagline)
	r.pdf.SetTextColor(0, 0, 0)
}

// ensureSpace starts a new page when the next block would cross the bottom
// margin, redrawing the header band and resetting the cursor.
func (r *renderer) ensureSpace(needed float64) {
	if r.y+needed <= pageHeight-bottomReserve {
		return
	}
	r.pdf.AddPage()
	r.drawHeader()
	r.y = marginTop
}

// wrap splits text into lines not wider than w using the current font.
func (r *renderer) wrap(text string, w float64) []string {
	return r.pdf.SplitText(r.tr(text), w)
}

// textRight takes raw text; lines that already went through wrap (and were
// translated there) must be drawn with the pdf primitives directly.
func (r *renderer) textRight(rightX, y float64, s string) {
	r.pdf.Text(rightX-r.width(s), y, r.tr(s))
}

// addWrapped wraps the text to the given width, reserves space for all lines
// at once and advances the cursor past them.
func (r *renderer) addWrapped(text string, x, w, lh float64) {
	s := strings.TrimSpace(text)
	if s == "" {
		return
	}
	lines := r.wrap(s, w)
	r.ensureSpace(float64(len(lines)) * lh)
	for i, line := range lines {
		r.pdf.Text(x, r.y+float64(i)*lh, line)
	}
	r.y += float64(len(lines)) * lh
}

// addHeading writes the uppercase section label with a hairline rule below.
func (r *renderer) addHeading(label string) {
	r.ensureSpace(12)
	r.setFont(10, "B")
	r.pdf.SetTextColor(60, 60, 60)
	r.text(marginX, r.y, strings.ToUpper(label))
	r.y += 2
	r.pdf.SetDrawColor(230, 230, 230)
	r.pdf.Line(marginX, r.y+2, marginX+contentWidth, r.y+2)
	r.y += 7
	r.pdf.SetTextColor(0, 0, 0)
}

// addBullets writes one bullet per chunk, wrapping each chunk independently
// so a long paragraph can break across pages without dragging its siblings
// along.
func (r *renderer) addBullets(chunks []string, x, w float64) {
	for _, chunk := range chunks {
		lines := r.wrap(chunk, w-bulletIndent)
		r.ensureSpace(float64(len(lines)) * lineHeight)
		r.text(x, r.y, "•")
		for i, line := range lines {
			r.pdf.Text(x+bulletIndent, r.y+float64(i)*lineHeight, line)
		}
		r.y += float64(len(lines)) * lineHeight
	}
}

func (r *renderer) renderDocument(doc *cv.Document) {
	rightX := marginX + contentWidth

	r.pdf.AddPage()
	r.drawHeader()
	r.y = marginTop

	fullName := strings.TrimSpace(doc.Personal.FullName)
	if fullName == "" {
		fullName = "Your Name"
	}

	r.setFont(18, "B")
	r.ensureSpace(14)
	r.text(marginX, r.y, fullName)
	r.y += 7

	if title := strings.TrimSpace(doc.Personal.Title); title != "" {
		r.setFont(11, "")
		r.pdf.SetTextColor(70, 70, 70)
		r.text(marginX, r.y, title)
		r.pdf.SetTextColor(0, 0, 0)
		r.y += 6
	} else {
		r.y += 2
	}

	// Contact details sit in a fixed column at the top right of the first
	// page, independent of the flowing cursor.
	r.setFont(9, "")
	r.pdf.SetTextColor(80, 80, 80)
	cy := marginTop
	for _, c := range []string{
		strings.TrimSpace(doc.Personal.Email),
		strings.TrimSpace(doc.Personal.Phone),
		strings.TrimSpace(doc.Personal.Location),
		strings.TrimSpace(doc.Personal.Website),
	} {
		if c == "" {
			continue
		}
		for _, line := range r.wrap(c, contactWidth) {
			r.pdf.Text(rightX-r.pdf.GetStringWidth(line), cy, line)
			cy += contactLeading
		}
	}
	r.pdf.SetTextColor(0, 0, 0)

	r.y += 2

	for _, section := range Blocks(doc) {
		r.renderSection(section, rightX)
	}
}

func (r *renderer) renderSection(section Section, rightX float64) {
	for _, block := range section.Blocks {
		switch block.Kind {
		case BlockHeading:
			r.addHeading(block.Text)

		case BlockParagraph:
			r.setFont(10, "")
			r.addWrapped(block.Text, marginX, contentWidth, lineHeight)

		case BlockBulletList:
			r.setFont(10, "")
			r.addBullets(block.Items, marginX, contentWidth)

		case BlockEntry:
			r.setFont(10, "B")
			r.ensureSpace(6)
			r.text(marginX, r.y, block.Left)
			if block.Right != "" {
				r.setFont(9, "")
				r.pdf.SetTextColor(90, 90, 90)
				r.textRight(rightX, r.y, block.Right)
				r.pdf.SetTextColor(0, 0, 0)
			}
			r.y += 5.5
			r.setFont(10, "")
			r.addBullets(block.Items, marginX, contentWidth)
			r.y += 3
		}
	}
	r.y += sectionGap
}

func sniffImageType(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "JPG"
	case len(data) >= 6 && (bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))):
		return "GIF"
	}
	return ""
}
