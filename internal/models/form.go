package models

import (
	"strconv"
	"strings"
)

// StudentForm is the edit-mode representation of a student. Every field is a
// string so blank inputs stay distinguishable from zero.
type StudentForm struct {
	StudentID      string `form:"studentId"`
	RollNo         string `form:"rollNo" validate:"required"`
	FirstName      string `form:"firstName" validate:"required"`
	LastName       string `form:"lastName"`
	Email          string `form:"email" validate:"required,email"`
	PhotographPath string `form:"photographPath"`
	CGPA           string `form:"cgpa" validate:"omitempty,numeric"`
	TotalCredits   string `form:"totalCredits" validate:"omitempty,number"`
	GraduationYear string `form:"graduationYear" validate:"omitempty,number"`
	Domain         string `form:"domain"`
	Token          string `form:"token"`
}

// FieldError names a form field whose value could not be converted.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return "invalid value for " + e.Field + ": " + strconv.Quote(e.Value)
}

// NewStudentForm reduces a student to edit-form values. The domain, in whatever
// shape it arrived, becomes a plain identifier string; nil numerics become blank.
func NewStudentForm(s Student, domains []Domain) StudentForm {
	form := StudentForm{
		RollNo:         s.RollNo,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		PhotographPath: s.PhotographPath,
		Domain:         domainFormValue(s.Domain, domains),
	}
	if s.StudentID != nil {
		form.StudentID = strconv.FormatInt(*s.StudentID, 10)
	}
	if s.CGPA != nil {
		form.CGPA = strconv.FormatFloat(*s.CGPA, 'f', -1, 64)
	}
	if s.TotalCredits != nil {
		form.TotalCredits = strconv.Itoa(*s.TotalCredits)
	}
	if s.GraduationYear != nil {
		form.GraduationYear = strconv.Itoa(*s.GraduationYear)
	}
	return form
}

func domainFormValue(ref DomainRef, domains []Domain) string {
	switch ref.Kind {
	case DomainObject:
		if ref.Object.HasID() {
			return strconv.FormatInt(ref.Object.DomainID, 10)
		}
		if d, ok := FindDomainByProgramBatch(domains, ref.Object.Program, ref.Object.Batch); ok {
			return strconv.FormatInt(d.DomainID, 10)
		}
		return ""
	case DomainByID:
		return strconv.FormatInt(ref.ID, 10)
	case DomainByName:
		return ref.Name
	default:
		return ""
	}
}

// UnlistedDomain returns the form's domain value when none of the loaded
// domains' ids match it, so the edit view can still offer it as the current
// choice. A program name or an id from a failed domain load survives an
// unchanged submit this way.
func (f StudentForm) UnlistedDomain(domains []Domain) string {
	value := strings.TrimSpace(f.Domain)
	if value == "" {
		return ""
	}
	for _, d := range domains {
		if strconv.FormatInt(d.DomainID, 10) == value {
			return ""
		}
	}
	return value
}

// ToStudent maps submitted form values back to the update payload. The selected
// identifier or program name is resolved against the loaded domains; blank
// numerics become absent rather than zero.
func (f StudentForm) ToStudent(domains []Domain) (Student, error) {
	s := Student{
		RollNo:         strings.TrimSpace(f.RollNo),
		FirstName:      strings.TrimSpace(f.FirstName),
		LastName:       strings.TrimSpace(f.LastName),
		Email:          strings.TrimSpace(f.Email),
		PhotographPath: f.PhotographPath,
		Domain:         resolveFormDomain(f.Domain, domains),
	}

	if id := strings.TrimSpace(f.StudentID); id != "" {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return Student{}, &FieldError{Field: "studentId", Value: f.StudentID}
		}
		s.StudentID = &v
	}

	if raw := strings.TrimSpace(f.CGPA); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Student{}, &FieldError{Field: "cgpa", Value: f.CGPA}
		}
		s.CGPA = &v
	}

	var err error
	if s.TotalCredits, err = parseOptionalInt("totalCredits", f.TotalCredits); err != nil {
		return Student{}, err
	}
	if s.GraduationYear, err = parseOptionalInt("graduationYear", f.GraduationYear); err != nil {
		return Student{}, err
	}
	return s, nil
}

func resolveFormDomain(value string, domains []Domain) DomainRef {
	value = strings.TrimSpace(value)
	if value == "" {
		return NoDomain()
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		if d, ok := FindDomainByID(domains, id); ok {
			return DomainRefObject(d)
		}
		return NoDomain()
	}
	if d, ok := FindDomainByProgram(domains, value); ok {
		return DomainRefObject(d)
	}
	return NoDomain()
}

func parseOptionalInt(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &FieldError{Field: field, Value: raw}
	}
	return &v, nil
}
