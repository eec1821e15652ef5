package cv

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// SectionID names one content block of the CV.
type SectionID string

const (
	SectionSummary        SectionID = "summary"
	SectionEducation      SectionID = "education"
	SectionExperience     SectionID = "experience"
	SectionSkills         SectionID = "skills"
	SectionProjects       SectionID = "projects"
	SectionHonors         SectionID = "honors"
	SectionCertifications SectionID = "certifications"
	SectionLanguages      SectionID = "languages"
)

// EntryKind selects one of the two repeatable entry lists.
type EntryKind string

const (
	EntryEducation  EntryKind = "education"
	EntryExperience EntryKind = "experience"
)

var (
	ErrUnknownSection   = errors.New("unknown section")
	ErrMandatorySection = errors.New("section is mandatory and cannot be disabled")
	ErrLastEntry        = errors.New("the last remaining entry cannot be removed")
	ErrUnknownEntryKind = errors.New("unknown entry kind")
	ErrIndexOutOfRange  = errors.New("entry index out of range")
)

// mandatorySections are always enabled and never removable from the order.
var mandatorySections = map[SectionID]bool{
	SectionSummary:   true,
	SectionEducation: true,
	SectionSkills:    true,
}

// allSections lists every known section in canonical order. Normalize uses
// it when restoring sections missing from the stored order, so restored
// drafts come out the same on every load.
var allSections = []SectionID{
	SectionSummary,
	SectionEducation,
	SectionExperience,
	SectionSkills,
	SectionProjects,
	SectionHonors,
	SectionCertifications,
	SectionLanguages,
}

var knownSections = map[SectionID]bool{
	SectionSummary:        true,
	SectionEducation:      true,
	SectionExperience:     true,
	SectionSkills:         true,
	SectionProjects:       true,
	SectionHonors:         true,
	SectionCertifications: true,
	SectionLanguages:      true,
}

// PersonalInfo holds the identity fields rendered at the top of the document.
type PersonalInfo struct {
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// EducationEntry is one school/degree record. Start and End are four-digit
// year strings, kept as strings end to end so a value entered as "2021"
// reads back as exactly "2021".
type EducationEntry struct {
	School  string `json:"school"`
	Degree  string `json:"degree"`
	Field   string `json:"field"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Details string `json:"details"`
}

// ExperienceEntry is one job record, same shape as EducationEntry with
// company/role in place of school/degree/field.
type ExperienceEntry struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Details string `json:"details"`
}

// Document is the full structured CV owned by a single editing session.
// Skills is a single comma-separated string; SkillsList derives the tokens.
type Document struct {
	Personal       PersonalInfo      `json:"personal"`
	Summary        string            `json:"summary"`
	Education      []EducationEntry  `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Skills         string            `json:"skills"`
	Projects       string            `json:"projects"`
	Honors         string            `json:"honors"`
	Certifications string            `json:"certifications"`
	Languages      string            `json:"languages"`

	SectionOrder []SectionID        `json:"section_order"`
	Enabled      map[SectionID]bool `json:"enabled_sections"`
}

// NewDocument returns a document with the default section layout: summary,
// education, experience, skills and projects enabled in that order, and one
// empty education entry.
func NewDocument() *Document {
	return &Document{
		Education:  []EducationEntry{{}},
		Experience: []ExperienceEntry{{}},
		SectionOrder: []SectionID{
			SectionSummary,
			SectionEducation,
			SectionExperience,
			SectionSkills,
			SectionProjects,
		},
		Enabled: map[SectionID]bool{
			SectionExperience: true,
			SectionProjects:   true,
		},
	}
}

// IsEnabled reports whether a section participates in rendering. Mandatory
// sections are always enabled regardless of the Enabled map.
func (d *Document) IsEnabled(id SectionID) bool {
	if mandatorySections[id] {
		return true
	}
	return d.Enabled[id]
}

// EnabledOrder returns the section order filtered to enabled sections.
func (d *Document) EnabledOrder() []SectionID {
	out := make([]SectionID, 0, len(d.SectionOrder))
	for _, id := range d.SectionOrder {
		if d.IsEnabled(id) {
			out = append(out, id)
		}
	}
	return out
}

// Normalize restores the document invariants after loading from storage or
// an untrusted client payload: the order contains exactly the enabled
// sections (mandatory ones included), unknown identifiers are dropped, and
// both entry lists keep at least one entry.
func (d *Document) Normalize() {
	if d.Enabled == nil {
		d.Enabled = map[SectionID]bool{}
	}

	seen := map[SectionID]bool{}
	order := make([]SectionID, 0, len(d.SectionOrder))
	for _, id := range d.SectionOrder {
		if !knownSections[id] || seen[id] || !d.IsEnabled(id) {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, id := range allSections {
		if !seen[id] && d.IsEnabled(id) {
			order = append(order, id)
			seen[id] = true
		}
	}
	d.SectionOrder = order

	if len(d.Education) == 0 {
		d.Education = []EducationEntry{{}}
	}
	if len(d.Experience) == 0 {
		d.Experience = []ExperienceEntry{{}}
	}
}

// EnableSection marks an optional section active and appends it to the order
// if absent. Enabling an already-enabled section is a no-op.
func (d *Document) EnableSection(id SectionID) error {
	if !knownSections[id] {
		return ErrUnknownSection
	}
	if d.Enabled == nil {
		d.Enabled = map[SectionID]bool{}
	}
	d.Enabled[id] = true
	for _, existing := range d.SectionOrder {
		if existing == id {
			return nil
		}
	}
	d.SectionOrder = append(d.SectionOrder, id)
	return nil
}

// DisableSection deactivates an optional section, removes it from the order
// and clears its content so a later re-enable starts blank.
func (d *Document) DisableSection(id SectionID) error {
	if !knownSections[id] {
		return ErrUnknownSection
	}
	if mandatorySections[id] {
		return ErrMandatorySection
	}
	if d.Enabled != nil {
		delete(d.Enabled, id)
	}
	order := d.SectionOrder[:0]
	for _, existing := range d.SectionOrder {
		if existing != id {
			order = append(order, existing)
		}
	}
	d.SectionOrder = order

	switch id {
	case SectionExperience:
		d.Experience = []ExperienceEntry{{}}
	case SectionProjects:
		d.Projects = ""
	case SectionHonors:
		d.Honors = ""
	case SectionCertifications:
		d.Certifications = ""
	case SectionLanguages:
		d.Languages = ""
	}
	return nil
}

// ReorderSection moves id to position toIndex within the order. The index is
// clamped to the valid range.
func (d *Document) ReorderSection(id SectionID, toIndex int) error {
	from := -1
	for i, existing := range d.SectionOrder {
		if existing == id {
			from = i
			break
		}
	}
	if from == -1 {
		return ErrUnknownSection
	}

	order := append([]SectionID{}, d.SectionOrder...)
	order = append(order[:from], order[from+1:]...)
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(order) {
		toIndex = len(order)
	}
	order = append(order[:toIndex], append([]SectionID{id}, order[toIndex:]...)...)
	d.SectionOrder = order
	return nil
}

// AddEntry appends an empty entry of the given kind.
func (d *Document) AddEntry(kind EntryKind) error {
	switch kind {
	case EntryEducation:
		d.Education = append(d.Education, EducationEntry{})
	case EntryExperience:
		d.Experience = append(d.Experience, ExperienceEntry{})
	default:
		return ErrUnknownEntryKind
	}
	return nil
}

// RemoveEntry removes the entry at index. Removing the last remaining entry
// of a kind is refused so the list never becomes empty.
func (d *Document) RemoveEntry(kind EntryKind, index int) error {
	switch kind {
	case EntryEducation:
		if len(d.Education) <= 1 {
			return ErrLastEntry
		}
		if index < 0 || index >= len(d.Education) {
			return ErrIndexOutOfRange
		}
		d.Education = append(d.Education[:index], d.Education[index+1:]...)
	case EntryExperience:
		if len(d.Experience) <= 1 {
			return ErrLastEntry
		}
		if index < 0 || index >= len(d.Experience) {
			return ErrIndexOutOfRange
		}
		d.Experience = append(d.Experience[:index], d.Experience[index+1:]...)
	default:
		return ErrUnknownEntryKind
	}
	return nil
}

// SkillsList splits the comma-separated skills string into trimmed,
// non-empty tokens.
func (d *Document) SkillsList() []string {
	parts := strings.Split(d.Skills, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (e EducationEntry) hasAny() bool {
	for _, v := range []string{e.School, e.Degree, e.Field, e.Start, e.End, e.Details} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func (e ExperienceEntry) hasAny() bool {
	for _, v := range []string{e.Company, e.Role, e.Start, e.End, e.Details} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Profile is the external seed record fetched once when the builder opens.
type Profile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	College       string `json:"college,omitempty"`
	Branch        string `json:"branch,omitempty"`
	YearOfPassing int    `json:"year_of_passing,omitempty"`
}

// SeedFromProfile pre-fills personal fields that are still empty and, when no
// education entry carries any user input, seeds one entry from the profile's
// college/branch/year. User edits are never overwritten.
func (d *Document) SeedFromProfile(p Profile) {
	if strings.TrimSpace(d.Personal.FullName) == "" {
		d.Personal.FullName = p.Name
	}
	if strings.TrimSpace(d.Personal.Email) == "" {
		d.Personal.Email = p.Email
	}
	if strings.TrimSpace(d.Personal.Phone) == "" {
		d.Personal.Phone = p.Phone
	}

	for _, e := range d.Education {
		if e.hasAny() {
			return
		}
	}
	if p.College == "" && p.Branch == "" && p.YearOfPassing == 0 {
		return
	}
	entry := EducationEntry{School: p.College, Field: p.Branch}
	if p.YearOfPassing != 0 {
		entry.End = strconv.Itoa(p.YearOfPassing)
	}
	d.Education = []EducationEntry{entry}
}

var (
	fileNameStrip  = regexp.MustCompile(`[^a-zA-Z0-9\-\s]`)
	fileNameSpaces = regexp.MustCompile(`\s+`)
)

// ExportFileName derives the download filename from the full name:
// non-alphanumerics stripped, runs of whitespace collapsed to underscores,
// falling back to "cv" when nothing survives.
func (d *Document) ExportFileName() string {
	name := fileNameStrip.ReplaceAllString(d.Personal.FullName, "")
	name = fileNameSpaces.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		name = "cv"
	}
	return name + ".pdf"
}
