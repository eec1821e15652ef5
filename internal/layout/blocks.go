package layout

import (
	"strings"

	"cvstudio/internal/cv"
)

// BlockKind discriminates the displayable block variants shared by the PDF
// and preview renderers.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockBulletList
	BlockEntry
)

// Block is one displayable unit of a section. Which fields are meaningful
// depends on Kind: Text for headings and paragraphs, Items for bullet lists,
// Left/Right/Items for entry rows (bold line, right-aligned year range,
// detail bullets).
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
	Left  string
	Right string
}

// Section is a rendered section: its identifier plus the blocks derived from
// the document content. Sections with no content produce no Section at all.
type Section struct {
	ID     cv.SectionID
	Blocks []Block
}

var sectionLabels = map[cv.SectionID]string{
	cv.SectionSummary:        "Professional Summary",
	cv.SectionEducation:      "Education",
	cv.SectionExperience:     "Experience",
	cv.SectionSkills:         "Skills",
	cv.SectionProjects:       "Projects",
	cv.SectionHonors:         "Honors & Awards",
	cv.SectionCertifications: "Certifications",
	cv.SectionLanguages:      "Languages",
}

// SectionLabel returns the printable heading for a section identifier.
func SectionLabel(id cv.SectionID) string {
	if label, ok := sectionLabels[id]; ok {
		return label
	}
	return string(id)
}

// bulletChunks splits free text on newlines into trimmed, non-empty
// paragraph chunks. Each chunk becomes one bullet whose overflow is checked
// independently of its siblings.
func bulletChunks(text string) []string {
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Blocks is the shared pure transformation from document to displayable
// sections. Both renderers consume its output so they cannot drift apart on
// section order, empty-section suppression or per-entry composition.
func Blocks(doc *cv.Document) []Section {
	out := make([]Section, 0, len(doc.SectionOrder))
	for _, id := range doc.EnabledOrder() {
		if blocks := sectionBlocks(doc, id); len(blocks) > 0 {
			out = append(out, Section{ID: id, Blocks: blocks})
		}
	}
	return out
}

func sectionBlocks(doc *cv.Document, id cv.SectionID) []Block {
	heading := Block{Kind: BlockHeading, Text: SectionLabel(id)}

	switch id {
	case cv.SectionSummary:
		s := strings.TrimSpace(doc.Summary)
		if s == "" {
			return nil
		}
		return []Block{heading, {Kind: BlockParagraph, Text: s}}

	case cv.SectionEducation:
		blocks := []Block{heading}
		for _, e := range doc.Education {
			left := joinNonEmpty(" · ", e.School, e.Degree, e.Field)
			right := joinNonEmpty(" - ", e.Start, e.End)
			items := bulletChunks(e.Details)
			if left == "" && right == "" && len(items) == 0 {
				continue
			}
			if left == "" {
				left = SectionLabel(id)
			}
			blocks = append(blocks, Block{Kind: BlockEntry, Left: left, Right: right, Items: items})
		}
		if len(blocks) == 1 {
			return nil
		}
		return blocks

	case cv.SectionExperience:
		blocks := []Block{heading}
		for _, e := range doc.Experience {
			left := joinNonEmpty(" · ", e.Company, e.Role)
			right := joinNonEmpty(" - ", e.Start, e.End)
			items := bulletChunks(e.Details)
			if left == "" && right == "" && len(items) == 0 {
				continue
			}
			if left == "" {
				left = SectionLabel(id)
			}
			blocks = append(blocks, Block{Kind: BlockEntry, Left: left, Right: right, Items: items})
		}
		if len(blocks) == 1 {
			return nil
		}
		return blocks

	case cv.SectionSkills:
		list := doc.SkillsList()
		if len(list) == 0 {
			return nil
		}
		return []Block{heading, {Kind: BlockBulletList, Items: list}}

	case cv.SectionProjects:
		return textSection(heading, doc.Projects, true)
	case cv.SectionHonors:
		return textSection(heading, doc.Honors, true)
	case cv.SectionCertifications:
		return textSection(heading, doc.Certifications, true)
	case cv.SectionLanguages:
		return textSection(heading, doc.Languages, false)
	}
	return nil
}

// textSection renders a free-text section either as a bullet list (one
// bullet per paragraph) or as a single wrapped paragraph.
func textSection(heading Block, text string, bullets bool) []Block {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	if bullets {
		return []Block{heading, {Kind: BlockBulletList, Items: bulletChunks(s)}}
	}
	return []Block{heading, {Kind: BlockParagraph, Text: s}}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
