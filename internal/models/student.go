package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Student is a roster record as exchanged with the backend.
type Student struct {
	StudentID      *int64
	RollNo         string
	FirstName      string
	LastName       string
	Email          string
	PhotographPath string
	CGPA           *float64
	TotalCredits   *int
	GraduationYear *int
	Domain         DomainRef
}

// studentWire is the backend shape. The photograph may arrive under either key;
// numeric fields may arrive as numbers or strings.
type studentWire struct {
	StudentID           *int64          `json:"studentId,omitempty"`
	RollNo              string          `json:"rollNo,omitempty"`
	FirstName           string          `json:"firstName,omitempty"`
	LastName            string          `json:"lastName,omitempty"`
	Email               string          `json:"email,omitempty"`
	PhotographPath      *string         `json:"photographPath,omitempty"`
	PhotographPathSnake *string         `json:"photograph_path,omitempty"`
	CGPA                json.RawMessage `json:"cgpa,omitempty"`
	TotalCredits        json.RawMessage `json:"totalCredits,omitempty"`
	GraduationYear      json.RawMessage `json:"graduationYear,omitempty"`
	Domain              DomainRef       `json:"domain"`
}

// studentPayload is what the portal sends on update: canonical photograph key,
// absent numerics omitted, domain always present (null clears it).
type studentPayload struct {
	StudentID      *int64    `json:"studentId,omitempty"`
	RollNo         string    `json:"rollNo"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	PhotographPath string    `json:"photograph_path"`
	CGPA           *float64  `json:"cgpa,omitempty"`
	TotalCredits   *int      `json:"totalCredits,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty"`
	Domain         DomainRef `json:"domain"`
}

// UnmarshalJSON decodes the tolerant backend shape.
func (s *Student) UnmarshalJSON(data []byte) error {
	var w studentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cgpa, err := decodeFloat(w.CGPA)
	if err != nil {
		return fmt.Errorf("cgpa: %w", err)
	}
	credits, err := decodeInt(w.TotalCredits)
	if err != nil {
		return fmt.Errorf("totalCredits: %w", err)
	}
	year, err := decodeInt(w.GraduationYear)
	if err != nil {
		return fmt.Errorf("graduationYear: %w", err)
	}

	*s = Student{
		StudentID:      w.StudentID,
		RollNo:         w.RollNo,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		Email:          w.Email,
		CGPA:           cgpa,
		TotalCredits:   credits,
		GraduationYear: year,
		Domain:         w.Domain,
	}
	switch {
	case w.PhotographPathSnake != nil && *w.PhotographPathSnake != "":
		s.PhotographPath = *w.PhotographPathSnake
	case w.PhotographPath != nil:
		s.PhotographPath = *w.PhotographPath
	}
	return nil
}

// MarshalJSON encodes the update payload.
func (s Student) MarshalJSON() ([]byte, error) {
	return json.Marshal(studentPayload{
		StudentID:      s.StudentID,
		RollNo:         s.RollNo,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		PhotographPath: s.PhotographPath,
		CGPA:           s.CGPA,
		TotalCredits:   s.TotalCredits,
		GraduationYear: s.GraduationYear,
		Domain:         s.Domain,
	})
}

// FullName joins first and last name, omitting a blank last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Key identifies the student for routing: the backend id, else the roll number.
func (s Student) Key() string {
	if s.StudentID != nil {
		return strconv.FormatInt(*s.StudentID, 10)
	}
	return s.RollNo
}

// PhotoURL maps stored photograph paths to something a browser can load.
// Absolute server paths under /home are served from /profiles by file name.
func (s Student) PhotoURL() string {
	p := s.PhotographPath
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "/home/") {
		return "/profiles/" + path.Base(p)
	}
	return p
}

// AvatarURL is the generated placeholder used when no photograph is stored.
func (s Student) AvatarURL() string {
	initial := "?"
	if s.FirstName != "" {
		initial = string([]rune(s.FirstName)[:1])
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(initial) + "&background=random&color=fff&size=50"
}

// FindStudent returns the roster entry addressed by key.
func FindStudent(students []Student, key string) (Student, bool) {
	for _, s := range students {
		if s.Key() == key {
			return s, true
		}
	}
	return Student{}, false
}

func decodeFloat(raw json.RawMessage) (*float64, error) {
	text, ok, err := numericText(raw)
	if err != nil || !ok {
		return nil, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeInt(raw json.RawMessage) (*int, error) {
	text, ok, err := numericText(raw)
	if err != nil || !ok {
		return nil, err
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return nil, err
		}
		v = int(f)
	}
	return &v, nil
}

// numericText unwraps a JSON number or numeric string. Null and blank strings
// report ok=false.
func numericText(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	return string(trimmed), true, nil
}
