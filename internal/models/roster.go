package models

import (
	"net/url"
	"strconv"
)

// Roster is everything the home view renders: the student table, the domains
// used for labels and the edit selector, and an inline load error.
type Roster struct {
	Students []Student
	Domains  []Domain
	Err      error
}

// DomainLabelFor labels a student's domain. Bare ids are looked up in the
// loaded domains first; names are shown as they are.
func (r Roster) DomainLabelFor(s Student) string {
	if s.Domain.Kind == DomainByID {
		if d, ok := FindDomainByID(r.Domains, s.Domain.ID); ok {
			return DomainLabel(DomainRefObject(d))
		}
	}
	return DomainLabel(s.Domain)
}

// DomainPath links a student's domain to its detail view, or returns "" when
// the domain cannot be identified.
func (r Roster) DomainPath(s Student) string {
	ref := ResolveDomain(s.Domain, r.Domains)
	switch ref.Kind {
	case DomainObject:
		if ref.Object.HasID() {
			return "/domains/" + strconv.FormatInt(ref.Object.DomainID, 10)
		}
		if ref.Object.Program != "" {
			return "/domains/" + url.PathEscape(ref.Object.Program)
		}
	case DomainByID:
		return "/domains/" + strconv.FormatInt(ref.ID, 10)
	case DomainByName:
		if ref.Name != "" {
			return "/domains/" + url.PathEscape(ref.Name)
		}
	}
	return ""
}
