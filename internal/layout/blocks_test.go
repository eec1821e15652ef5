package layout

import (
	"reflect"
	"testing"

	"cvstudio/internal/cv"
)

func contentfulDocument() *cv.Document {
	doc := cv.NewDocument()
	doc.Personal.FullName = "Jane Doe"
	doc.Summary = "Engineer with five years of backend experience."
	doc.Education = []cv.EducationEntry{{
		School:  "Example University",
		Degree:  "BSc",
		Field:   "Computer Science",
		Start:   "2016",
		End:     "2020",
		Details: "Graduated with honors.\nThesis on layout engines.",
	}}
	doc.Experience = []cv.ExperienceEntry{{
		Company: "Acme Corp",
		Role:    "Backend Engineer",
		Start:   "2020",
		End:     "2024",
		Details: "Built the billing pipeline.",
	}}
	doc.Skills = "Go, PostgreSQL"
	doc.Projects = "Wrote an open source PDF layout engine."
	return doc
}

func sectionIDs(sections []Section) []cv.SectionID {
	ids := make([]cv.SectionID, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestBlocksFollowSectionOrder(t *testing.T) {
	doc := contentfulDocument()
	if err := doc.ReorderSection(cv.SectionSkills, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := sectionIDs(Blocks(doc))
	want := []cv.SectionID{
		cv.SectionSkills,
		cv.SectionSummary,
		cv.SectionEducation,
		cv.SectionExperience,
		cv.SectionProjects,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("section order = %v, want %v", got, want)
	}
}

func TestBlocksSuppressEmptySections(t *testing.T) {
	doc := contentfulDocument()
	doc.Summary = "   "
	doc.Projects = ""
	doc.Experience = []cv.ExperienceEntry{{}}

	got := sectionIDs(Blocks(doc))
	want := []cv.SectionID{cv.SectionEducation, cv.SectionSkills}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
}

func TestBlocksSkipDisabledSections(t *testing.T) {
	doc := contentfulDocument()
	if err := doc.DisableSection(cv.SectionProjects); err != nil {
		t.Fatalf("disable projects: %v", err)
	}

	for _, s := range Blocks(doc) {
		if s.ID == cv.SectionProjects {
			t.Fatal("disabled section still rendered")
		}
	}
}

func TestEntryComposition(t *testing.T) {
	doc := contentfulDocument()
	sections := Blocks(doc)

	var education, experience *Section
	for i := range sections {
		switch sections[i].ID {
		case cv.SectionEducation:
			education = &sections[i]
		case cv.SectionExperience:
			experience = &sections[i]
		}
	}
	if education == nil || experience == nil {
		t.Fatalf("missing sections in %v", sectionIDs(sections))
	}

	entry := education.Blocks[1]
	if entry.Kind != BlockEntry {
		t.Fatalf("education block kind = %v, want entry", entry.Kind)
	}
	if entry.Left != "Example University · BSc · Computer Science" {
		t.Errorf("education left = %q", entry.Left)
	}
	if entry.Right != "2016 - 2020" {
		t.Errorf("education right = %q", entry.Right)
	}
	wantItems := []string{"Graduated with honors.", "Thesis on layout engines."}
	if !reflect.DeepEqual(entry.Items, wantItems) {
		t.Errorf("education items = %v, want %v", entry.Items, wantItems)
	}

	entry = experience.Blocks[1]
	if entry.Left != "Acme Corp · Backend Engineer" {
		t.Errorf("experience left = %q", entry.Left)
	}
}

func TestEntryPartialFields(t *testing.T) {
	doc := contentfulDocument()
	doc.Education = []cv.EducationEntry{{School: "Example University", End: "2020"}}

	sections := Blocks(doc)
	for _, s := range sections {
		if s.ID != cv.SectionEducation {
			continue
		}
		entry := s.Blocks[1]
		if entry.Left != "Example University" {
			t.Errorf("left = %q, separators should not dangle", entry.Left)
		}
		if entry.Right != "2020" {
			t.Errorf("right = %q", entry.Right)
		}
		return
	}
	t.Fatal("education section missing")
}

func TestSkillsBecomeBullets(t *testing.T) {
	doc := contentfulDocument()
	for _, s := range Blocks(doc) {
		if s.ID != cv.SectionSkills {
			continue
		}
		list := s.Blocks[1]
		if list.Kind != BlockBulletList {
			t.Fatalf("skills kind = %v, want bullet list", list.Kind)
		}
		want := []string{"Go", "PostgreSQL"}
		if !reflect.DeepEqual(list.Items, want) {
			t.Errorf("skills items = %v, want %v", list.Items, want)
		}
		return
	}
	t.Fatal("skills section missing")
}

func TestLanguagesRenderAsParagraph(t *testing.T) {
	doc := contentfulDocument()
	if err := doc.EnableSection(cv.SectionLanguages); err != nil {
		t.Fatalf("enable languages: %v", err)
	}
	doc.Languages = "English (fluent), German (B2)"

	for _, s := range Blocks(doc) {
		if s.ID != cv.SectionLanguages {
			continue
		}
		if s.Blocks[1].Kind != BlockParagraph {
			t.Fatalf("languages kind = %v, want paragraph", s.Blocks[1].Kind)
		}
		return
	}
	t.Fatal("languages section missing")
}

func TestBulletChunks(t *testing.T) {
	got := bulletChunks("first\n\n  second  \n\t\nthird")
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bulletChunks = %v, want %v", got, want)
	}
}
