package layout

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"cvstudio/internal/cv"
)

func renderForTest(t *testing.T, doc *cv.Document) *Result {
	t.Helper()
	engine := NewEngine(nil)
	result, err := engine.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return result
}

func TestRenderProducesValidPDF(t *testing.T) {
	result := renderForTest(t, contentfulDocument())

	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF header: %q", result.PDF[:8])
	}
	if result.Pages != 1 {
		t.Errorf("short document rendered %d pages, want 1", result.Pages)
	}
}

func TestRenderWithoutAssetsWarnsButSucceeds(t *testing.T) {
	result := renderForTest(t, contentfulDocument())
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning when no asset cache is configured")
	}
	if len(result.PDF) == 0 {
		t.Fatal("expected pdf output despite missing assets")
	}
}

// longDocument builds a draft whose experience section spills across page
// boundaries.
func longDocument() *cv.Document {
	doc := contentfulDocument()
	line := "Shipped a project milestone with measurable results."
	doc.Experience = nil
	for i := 0; i < 20; i++ {
		doc.Experience = append(doc.Experience, cv.ExperienceEntry{
			Company: "Acme Corp",
			Role:    "Backend Engineer",
			Start:   "2015",
			End:     "2020",
			Details: strings.Repeat(line+"\n", 5),
		})
	}
	return doc
}

func TestRenderLongDocumentPaginates(t *testing.T) {
	result := renderForTest(t, longDocument())
	if result.Pages < 2 {
		t.Fatalf("long document rendered %d pages, want at least 2", result.Pages)
	}
}

func TestHeaderBandOnEveryPage(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(false)

	r := &renderer{pdf: pdf, tr: func(s string) string { return s }}
	r.renderDocument(longDocument())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}

	pages := pdf.PageCount()
	if pages < 2 {
		t.Fatalf("rendered %d pages, want at least 2", pages)
	}

	// The band is a filled rect spanning the full page width (595.28pt) and
	// 22mm (62.36pt) down from the top edge (y 841.89pt in pdf space).
	band := []byte("0.00 841.89 595.28 -62.36 re f")
	if got := bytes.Count(buf.Bytes(), band); got != pages {
		t.Errorf("header band drawn on %d pages, want %d", got, pages)
	}
}

func TestFallbackTranslatorAppliedOnce(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	base := pdf.UnicodeTranslatorFromDescriptor("")
	var inputs []string
	r := &renderer{pdf: pdf, tr: func(s string) string {
		inputs = append(inputs, s)
		return base(s)
	}}

	doc := contentfulDocument()
	doc.Personal.Location = "Zürich, Schweiz"
	doc.Personal.Email = "jürgen@example.com"
	r.renderDocument(doc)

	// Translated cp1252 output is no longer valid UTF-8, so a translator fed
	// its own output would show up here as an invalid input string.
	for _, s := range inputs {
		if !utf8.ValidString(s) {
			t.Fatalf("translator received already-translated text %q", s)
		}
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	doc := cv.NewDocument()
	result := renderForTest(t, doc)

	if result.Pages != 1 {
		t.Errorf("empty document rendered %d pages, want 1", result.Pages)
	}
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("empty document did not produce a valid pdf")
	}
}

func TestRenderNonASCIIContent(t *testing.T) {
	doc := contentfulDocument()
	doc.Personal.FullName = "Łukasz Müller"
	doc.Summary = "Café résumé with naïve façade test content for encoding."

	result := renderForTest(t, doc)
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Fatal("non-ascii content broke the pdf output")
	}
}

func TestSniffImageType(t *testing.T) {
	cases := []struct {
		data []byte
		want string
	}{
		{[]byte("\x89PNG\r\n\x1a\nrest"), "PNG"},
		{[]byte{0xFF, 0xD8, 0xFF, 0xE0}, "JPG"},
		{[]byte("GIF89a..."), "GIF"},
		{[]byte("plain text"), ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := sniffImageType(tc.data); got != tc.want {
			t.Errorf("sniffImageType(%q) = %q, want %q", tc.data, got, tc.want)
		}
	}
}
