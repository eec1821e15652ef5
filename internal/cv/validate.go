package cv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Errors maps dotted field paths (personal.email, education.0.start, skills)
// to human-readable messages. Absence of a key means the field is valid.
type Errors map[string]string

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^[+()\d\s-]+$`)
	websiteScheme = regexp.MustCompile(`(?i)^https?://`)
	websiteDomain = regexp.MustCompile(`(?i)^\w[\w.-]*\.[a-z]{2,}`)
	yearPattern   = regexp.MustCompile(`^\d{4}$`)
)

// Validate runs every field rule against the document and returns the full
// error map plus an all-valid flag. It is pure: no state is kept between
// calls and the map is recomputed wholesale each time. The supplied clock
// anchors the "no future year" rules.
func Validate(doc *Document, now time.Time) (Errors, bool) {
	v := validator{errs: Errors{}, nowYear: now.Year()}
	v.run(doc)
	return v.errs, len(v.errs) == 0
}

type validator struct {
	errs    Errors
	nowYear int
}

func (v *validator) requireText(key, value, label string, minLen, maxLen int) string {
	s := strings.TrimSpace(value)
	switch {
	case s == "":
		v.errs[key] = fmt.Sprintf("%s is required", label)
		return ""
	case len([]rune(s)) < minLen:
		v.errs[key] = fmt.Sprintf("%s is too short", label)
		return ""
	case len([]rune(s)) > maxLen:
		v.errs[key] = fmt.Sprintf("%s is too long", label)
		return ""
	}
	return s
}

// yearRange validation differs between sections: education may declare a
// future graduation year, experience may not end in the future. Start years
// are never allowed in the future.
type yearRules struct {
	disallowFutureEnd bool
}

func (v *validator) validateYearRange(startKey, endKey, startRaw, endRaw string, rules yearRules) {
	start, startState := parseYear(startRaw)
	end, endState := parseYear(endRaw)

	switch startState {
	case yearMissing:
		v.errs[startKey] = "start year is required"
	case yearInvalid:
		v.errs[startKey] = "start year is invalid"
	case yearOK:
		if start > v.nowYear {
			v.errs[startKey] = "start year cannot be in the future"
		}
	}

	switch endState {
	case yearMissing:
		v.errs[endKey] = "end year is required"
	case yearInvalid:
		v.errs[endKey] = "end year is invalid"
	case yearOK:
		if rules.disallowFutureEnd && end > v.nowYear {
			v.errs[endKey] = "end year cannot be in the future"
		}
	}

	if startState == yearOK && endState == yearOK && end < start {
		v.errs[endKey] = "end year must not precede start year"
	}
}

type yearState int

const (
	yearMissing yearState = iota
	yearInvalid
	yearOK
)

func parseYear(raw string) (int, yearState) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, yearMissing
	}
	if !yearPattern.MatchString(s) {
		return 0, yearInvalid
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, yearInvalid
	}
	return n, yearOK
}

func (v *validator) run(doc *Document) {
	v.personal(doc.Personal)
	v.summary(doc.Summary)
	v.education(doc.Education)
	if doc.IsEnabled(SectionExperience) {
		v.experience(doc.Experience)
	}
	v.skills(doc.SkillsList())

	if doc.IsEnabled(SectionProjects) {
		if s := strings.TrimSpace(doc.Projects); s != "" {
			if len([]rune(s)) < 10 {
				v.errs["projects"] = "projects is too short"
			} else if len([]rune(s)) > 2000 {
				v.errs["projects"] = "projects is too long"
			}
		}
	}
	if doc.IsEnabled(SectionHonors) {
		if s := strings.TrimSpace(doc.Honors); len([]rune(s)) > 2000 {
			v.errs["honors"] = "honors is too long"
		}
	}
	if doc.IsEnabled(SectionCertifications) {
		if s := strings.TrimSpace(doc.Certifications); len([]rune(s)) > 2000 {
			v.errs["certifications"] = "certifications is too long"
		}
	}
	if doc.IsEnabled(SectionLanguages) {
		if s := strings.TrimSpace(doc.Languages); len([]rune(s)) > 300 {
			v.errs["languages"] = "languages is too long"
		}
	}
}

func (v *validator) personal(p PersonalInfo) {
	v.requireText("personal.full_name", p.FullName, "full name", 2, 80)
	v.requireText("personal.title", p.Title, "title", 2, 80)

	if email := v.requireText("personal.email", p.Email, "email", 5, 120); email != "" {
		if !emailPattern.MatchString(email) {
			v.errs["personal.email"] = "email is invalid"
		}
	}
	if phone := v.requireText("personal.phone", p.Phone, "phone", 6, 30); phone != "" {
		if !phonePattern.MatchString(phone) {
			v.errs["personal.phone"] = "phone contains invalid characters"
		}
	}
	v.requireText("personal.location", p.Location, "location", 2, 80)

	website := strings.TrimSpace(p.Website)
	if website == "" {
		v.errs["personal.website"] = "website is required"
	} else if !websiteScheme.MatchString(website) && !websiteDomain.MatchString(website) {
		v.errs["personal.website"] = "website is invalid"
	}
}

func (v *validator) summary(summary string) {
	s := strings.TrimSpace(summary)
	switch {
	case s == "":
		v.errs["summary"] = "summary is required"
	case len([]rune(s)) < 20:
		v.errs["summary"] = "summary is too short"
	case len([]rune(s)) > 1500:
		v.errs["summary"] = "summary is too long"
	}
}

// education and experience share the first-or-filled policy: entries with any
// field set are validated in full; if nothing is filled the first entry is
// validated anyway, forcing at least one complete record.
func (v *validator) education(entries []EducationEntry) {
	if len(entries) == 0 {
		v.errs["education"] = "at least one education entry is required"
		return
	}

	toValidate := make([]int, 0, len(entries))
	for i, e := range entries {
		if e.hasAny() {
			toValidate = append(toValidate, i)
		}
	}
	if len(toValidate) == 0 {
		toValidate = []int{0}
	}

	for _, i := range toValidate {
		e := entries[i]
		prefix := fmt.Sprintf("education.%d.", i)
		v.requireText(prefix+"school", e.School, "school", 2, 120)
		v.requireText(prefix+"degree", e.Degree, "degree", 2, 120)
		v.requireText(prefix+"field", e.Field, "field of study", 2, 120)
		v.requireText(prefix+"details", e.Details, "education details", 5, 1500)
		v.validateYearRange(prefix+"start", prefix+"end", e.Start, e.End, yearRules{disallowFutureEnd: false})
	}
}

func (v *validator) experience(entries []ExperienceEntry) {
	if len(entries) == 0 {
		v.errs["experience"] = "at least one experience entry is required"
		return
	}

	toValidate := make([]int, 0, len(entries))
	for i, e := range entries {
		if e.hasAny() {
			toValidate = append(toValidate, i)
		}
	}
	if len(toValidate) == 0 {
		toValidate = []int{0}
	}

	for _, i := range toValidate {
		e := entries[i]
		prefix := fmt.Sprintf("experience.%d.", i)
		v.requireText(prefix+"company", e.Company, "company", 2, 120)
		v.requireText(prefix+"role", e.Role, "role", 2, 120)
		v.requireText(prefix+"details", e.Details, "experience details", 5, 1500)
		v.validateYearRange(prefix+"start", prefix+"end", e.Start, e.End, yearRules{disallowFutureEnd: true})
	}
}

func (v *validator) skills(list []string) {
	if len(list) == 0 {
		v.errs["skills"] = "at least one skill is required"
		return
	}
	for _, s := range list {
		if len([]rune(s)) > 40 {
			v.errs["skills"] = "one of the skills is too long"
			return
		}
	}
}
