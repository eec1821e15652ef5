package layout

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"cvstudio/internal/cv"
)

// Preview scale bounds. The preview shrinks to fit narrow viewports but
// never below 35% and never zooms past natural size.
const (
	minScale = 0.35
	maxScale = 1.0

	// A4 width in CSS pixels at 96 dpi.
	pageWidthPx = pageWidth * 96.0 / 25.4
)

// Scale maps an available viewport width in pixels to the preview zoom
// factor, clamped to [0.35, 1.0].
func Scale(viewportPx float64) float64 {
	if viewportPx <= 0 {
		return minScale
	}
	s := viewportPx / pageWidthPx
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

// previewData is the root template context. All geometry is expressed in
// millimetres so the stylesheet shares the renderer's constants verbatim.
type previewData struct {
	Scale    float64
	PageW    float64
	MarginX  float64
	TopPad   float64
	HeaderH  float64
	Brand    string
	Tagline  string
	FullName string
	Title    string
	Contacts []string
	Sections []previewSection
}

type previewSection struct {
	ID     string
	Blocks []Block
}

var previewTmpl = template.Must(template.New("preview").Funcs(template.FuncMap{
	"mm": func(v float64) template.CSS { return template.CSS(fmt.Sprintf("%.2fmm", v)) },
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: #e5e7eb; font-family: "Noto Sans", Helvetica, Arial, sans-serif; }
  .page {
    width: {{mm .PageW}};
    min-height: 297mm;
    margin: 16px auto;
    background: #fff;
    box-shadow: 0 1px 4px rgba(0,0,0,.25);
    transform: scale({{.Scale}});
    transform-origin: top center;
    position: relative;
  }
  .band {
    height: {{mm .HeaderH}};
    background: rgb(79,70,229);
    color: #fff;
    padding-left: {{mm .MarginX}};
    box-sizing: border-box;
  }
  .band .brand { font-size: 12pt; font-weight: 700; padding-top: 5mm; }
  .band .tagline { font-size: 9pt; }
  .content { padding: {{mm .TopPad}} {{mm .MarginX}} 14mm {{mm .MarginX}}; }
  .name { font-size: 18pt; font-weight: 700; }
  .title { font-size: 11pt; color: rgb(70,70,70); }
  .contacts { float: right; width: 60mm; text-align: right; font-size: 9pt; color: rgb(80,80,80); }
  h2 {
    font-size: 10pt; font-weight: 700; color: rgb(60,60,60);
    text-transform: uppercase; margin: 5mm 0 2mm 0;
    border-bottom: 1px solid rgb(230,230,230); padding-bottom: 2mm;
  }
  .entry { margin-bottom: 3mm; }
  .entry .head { display: flex; justify-content: space-between; font-size: 10pt; }
  .entry .left { font-weight: 700; }
  .entry .right { font-size: 9pt; color: rgb(90,90,90); }
  p, li { font-size: 10pt; margin: 0 0 1mm 0; }
  ul { margin: 0; padding-left: 3mm; list-style: disc; }
</style>
</head>
<body>
<div class="page">
  <div class="band">
    <div class="brand">{{.Brand}}</div>
    <div class="tagline">{{.Tagline}}</div>
  </div>
  <div class="content">
    <div class="contacts">
      {{- range .Contacts}}
      <div>{{.}}</div>
      {{- end}}
    </div>
    <div class="name">{{.FullName}}</div>
    {{- if .Title}}
    <div class="title">{{.Title}}</div>
    {{- end}}
    {{- range .Sections}}
    <section data-section="{{.ID}}">
      {{- range .Blocks}}
      {{- if eq .Kind 0}}
      <h2>{{.Text}}</h2>
      {{- else if eq .Kind 1}}
      <p>{{.Text}}</p>
      {{- else if eq .Kind 2}}
      <ul>
        {{- range .Items}}
        <li>{{.}}</li>
        {{- end}}
      </ul>
      {{- else if eq .Kind 3}}
      <div class="entry">
        <div class="head"><span class="left">{{.Left}}</span><span class="right">{{.Right}}</span></div>
        {{- if .Items}}
        <ul>
          {{- range .Items}}
          <li>{{.}}</li>
          {{- end}}
        </ul>
        {{- end}}
      </div>
      {{- end}}
      {{- end}}
    </section>
    {{- end}}
  </div>
</div>
</body>
</html>
`))

// PreviewHTML renders the document as a single self-contained HTML page that
// mirrors the PDF layout: same section order, same suppression of empty
// sections, same entry composition, drawn from the shared block form. The
// preview is one growing page rather than paginated.
func PreviewHTML(doc *cv.Document, viewportPx float64) ([]byte, error) {
	fullName := strings.TrimSpace(doc.Personal.FullName)
	if fullName == "" {
		fullName = "Your Name"
	}

	contacts := make([]string, 0, 4)
	for _, c := range []string{
		strings.TrimSpace(doc.Personal.Email),
		strings.TrimSpace(doc.Personal.Phone),
		strings.TrimSpace(doc.Personal.Location),
		strings.TrimSpace(doc.Personal.Website),
	} {
		if c != "" {
			contacts = append(contacts, c)
		}
	}

	sections := make([]previewSection, 0, 8)
	for _, s := range Blocks(doc) {
		sections = append(sections, previewSection{ID: string(s.ID), Blocks: s.Blocks})
	}

	data := previewData{
		Scale:    Scale(viewportPx),
		PageW:    pageWidth,
		MarginX:  marginX,
		TopPad:   marginTop - headerHeight,
		HeaderH:  headerHeight,
		Brand:    brandName,
		Tagline:  brandTagline,
		FullName: fullName,
		Title:    strings.TrimSpace(doc.Personal.Title),
		Contacts: contacts,
		Sections: sections,
	}

	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}
