package cv

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"testing"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument()

	wantOrder := []SectionID{
		SectionSummary,
		SectionEducation,
		SectionExperience,
		SectionSkills,
		SectionProjects,
	}
	if !reflect.DeepEqual(doc.SectionOrder, wantOrder) {
		t.Fatalf("default order = %v, want %v", doc.SectionOrder, wantOrder)
	}
	if len(doc.Education) != 1 || len(doc.Experience) != 1 {
		t.Fatalf("expected one empty entry per kind, got %d education, %d experience", len(doc.Education), len(doc.Experience))
	}
	for _, id := range []SectionID{SectionSummary, SectionEducation, SectionSkills, SectionExperience, SectionProjects} {
		if !doc.IsEnabled(id) {
			t.Errorf("section %s should be enabled by default", id)
		}
	}
	if doc.IsEnabled(SectionHonors) {
		t.Error("honors should be disabled by default")
	}
}

func TestDisableSectionClearsContent(t *testing.T) {
	doc := NewDocument()
	doc.Experience = []ExperienceEntry{{Company: "Acme", Role: "Engineer"}}
	doc.Projects = "Built a thing"

	if err := doc.DisableSection(SectionExperience); err != nil {
		t.Fatalf("disable experience: %v", err)
	}
	if doc.IsEnabled(SectionExperience) {
		t.Error("experience should be disabled")
	}
	if len(doc.Experience) != 1 || doc.Experience[0].Company != "" {
		t.Errorf("experience content should be reset, got %+v", doc.Experience)
	}

	if err := doc.DisableSection(SectionProjects); err != nil {
		t.Fatalf("disable projects: %v", err)
	}
	if doc.Projects != "" {
		t.Errorf("projects content should be cleared, got %q", doc.Projects)
	}

	for _, id := range doc.SectionOrder {
		if id == SectionExperience || id == SectionProjects {
			t.Errorf("disabled section %s still in order %v", id, doc.SectionOrder)
		}
	}
}

func TestDisableMandatorySectionRefused(t *testing.T) {
	doc := NewDocument()
	for _, id := range []SectionID{SectionSummary, SectionEducation, SectionSkills} {
		if err := doc.DisableSection(id); !errors.Is(err, ErrMandatorySection) {
			t.Errorf("disable %s: got %v, want ErrMandatorySection", id, err)
		}
	}
}

func TestEnableSectionAppendsOnce(t *testing.T) {
	doc := NewDocument()
	if err := doc.EnableSection(SectionLanguages); err != nil {
		t.Fatalf("enable languages: %v", err)
	}
	if err := doc.EnableSection(SectionLanguages); err != nil {
		t.Fatalf("re-enable languages: %v", err)
	}

	count := 0
	for _, id := range doc.SectionOrder {
		if id == SectionLanguages {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("languages appears %d times in order, want 1", count)
	}
	if doc.SectionOrder[len(doc.SectionOrder)-1] != SectionLanguages {
		t.Errorf("newly enabled section should be appended, order = %v", doc.SectionOrder)
	}
}

func TestReorderSectionClampsIndex(t *testing.T) {
	doc := NewDocument()

	if err := doc.ReorderSection(SectionSkills, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if doc.SectionOrder[0] != SectionSkills {
		t.Fatalf("order = %v, want skills first", doc.SectionOrder)
	}

	if err := doc.ReorderSection(SectionSkills, 99); err != nil {
		t.Fatalf("reorder out of range: %v", err)
	}
	if doc.SectionOrder[len(doc.SectionOrder)-1] != SectionSkills {
		t.Fatalf("order = %v, want skills last", doc.SectionOrder)
	}

	if err := doc.ReorderSection(SectionHonors, 0); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("reorder absent section: got %v, want ErrUnknownSection", err)
	}
}

func TestRemoveEntryRefusesLast(t *testing.T) {
	doc := NewDocument()

	if err := doc.RemoveEntry(EntryEducation, 0); !errors.Is(err, ErrLastEntry) {
		t.Fatalf("remove last education: got %v, want ErrLastEntry", err)
	}

	if err := doc.AddEntry(EntryEducation); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if err := doc.RemoveEntry(EntryEducation, 1); err != nil {
		t.Fatalf("remove second entry: %v", err)
	}
	if len(doc.Education) != 1 {
		t.Fatalf("education has %d entries, want 1", len(doc.Education))
	}

	if err := doc.RemoveEntry(EntryEducation, 5); !errors.Is(err, ErrLastEntry) {
		t.Errorf("remove from single-entry list: got %v, want ErrLastEntry", err)
	}
}

func TestNormalizeRestoresInvariants(t *testing.T) {
	doc := &Document{
		SectionOrder: []SectionID{SectionProjects, "bogus", SectionProjects},
		Enabled:      map[SectionID]bool{SectionProjects: true, SectionLanguages: true},
	}
	doc.Normalize()

	seen := map[SectionID]bool{}
	for _, id := range doc.SectionOrder {
		if seen[id] {
			t.Fatalf("duplicate section %s in order %v", id, doc.SectionOrder)
		}
		seen[id] = true
	}
	for id := range map[SectionID]bool{SectionSummary: true, SectionEducation: true, SectionSkills: true} {
		if !seen[id] {
			t.Errorf("mandatory section %s missing from order %v", id, doc.SectionOrder)
		}
	}
	if !seen[SectionLanguages] {
		t.Errorf("enabled section languages missing from order %v", doc.SectionOrder)
	}
	if len(doc.Education) != 1 || len(doc.Experience) != 1 {
		t.Errorf("entry lists not restored: %d education, %d experience", len(doc.Education), len(doc.Experience))
	}
}

func TestNormalizeRestoredOrderIsDeterministic(t *testing.T) {
	build := func() *Document {
		return &Document{
			Enabled: map[SectionID]bool{
				SectionLanguages:      true,
				SectionHonors:         true,
				SectionCertifications: true,
			},
		}
	}

	want := []SectionID{
		SectionSummary,
		SectionEducation,
		SectionSkills,
		SectionHonors,
		SectionCertifications,
		SectionLanguages,
	}
	for i := 0; i < 10; i++ {
		doc := build()
		doc.Normalize()
		if !reflect.DeepEqual(doc.SectionOrder, want) {
			t.Fatalf("restored order = %v, want %v", doc.SectionOrder, want)
		}
	}
}

func TestSkillsList(t *testing.T) {
	doc := NewDocument()
	doc.Skills = " Go ,, Postgres,  ,Redis "
	got := doc.SkillsList()
	want := []string{"Go", "Postgres", "Redis"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SkillsList() = %v, want %v", got, want)
	}
}

func TestYearStringRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Education[0].Start = "2021"

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Education[0].Start != "2021" {
		t.Fatalf("start year = %q after round trip, want \"2021\"", back.Education[0].Start)
	}
}

func TestSeedFromProfile(t *testing.T) {
	profile := Profile{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "+44 1234",
		College:       "St Example College",
		Branch:        "Mathematics",
		YearOfPassing: 2026,
	}

	doc := NewDocument()
	doc.SeedFromProfile(profile)

	if doc.Personal.FullName != "Ada Lovelace" || doc.Personal.Email != "ada@example.com" {
		t.Fatalf("personal not seeded: %+v", doc.Personal)
	}
	if doc.Education[0].School != "St Example College" || doc.Education[0].End != "2026" {
		t.Fatalf("education not seeded: %+v", doc.Education[0])
	}

	// User edits survive a re-seed.
	doc.Personal.Email = "custom@example.com"
	doc.Education[0].Degree = "BSc"
	doc.SeedFromProfile(profile)
	if doc.Personal.Email != "custom@example.com" {
		t.Errorf("seed overwrote edited email: %q", doc.Personal.Email)
	}
	if doc.Education[0].Degree != "BSc" {
		t.Errorf("seed overwrote edited education: %+v", doc.Education[0])
	}
}

func TestExportFileName(t *testing.T) {
	safeName := regexp.MustCompile(`^[A-Za-z0-9_\-]+\.pdf$`)

	cases := []struct {
		fullName string
		want     string
	}{
		{"John Smith", "John_Smith.pdf"},
		{"  Jean-Luc   Picard  ", "Jean-Luc_Picard.pdf"},
		{"!!!", "cv.pdf"},
		{"", "cv.pdf"},
	}
	for _, tc := range cases {
		doc := NewDocument()
		doc.Personal.FullName = tc.fullName
		got := doc.ExportFileName()
		if got != tc.want {
			t.Errorf("ExportFileName(%q) = %q, want %q", tc.fullName, got, tc.want)
		}
		if !safeName.MatchString(got) {
			t.Errorf("ExportFileName(%q) = %q, contains unsafe characters", tc.fullName, got)
		}
	}

	doc := NewDocument()
	doc.Personal.FullName = "Ana-Maria Ștefan!!"
	if got := doc.ExportFileName(); !safeName.MatchString(got) {
		t.Errorf("ExportFileName with diacritics = %q, contains unsafe characters", got)
	}
}
