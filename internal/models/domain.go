package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Domain is an academic program/batch grouping students are enrolled in.
// DomainID zero means the identifier was not supplied.
type Domain struct {
	DomainID      int64  `json:"domainId,omitempty"`
	Program       string `json:"program"`
	Batch         string `json:"batch"`
	Qualification string `json:"qualification,omitempty"`
	Capacity      *int   `json:"capacity,omitempty"`
}

// HasID reports whether the domain carries a backend identifier.
func (d Domain) HasID() bool {
	return d.DomainID != 0
}

// DomainKind enumerates the shapes a student's domain arrives in.
type DomainKind int

const (
	DomainAbsent DomainKind = iota
	DomainByID
	DomainByName
	DomainObject
)

// DomainRef is a student's domain in whichever shape the backend or form produced.
type DomainRef struct {
	Kind   DomainKind
	ID     int64
	Name   string
	Object Domain
}

// NoDomain is the absent reference.
func NoDomain() DomainRef { return DomainRef{Kind: DomainAbsent} }

// DomainRefID references a domain by bare identifier.
func DomainRefID(id int64) DomainRef { return DomainRef{Kind: DomainByID, ID: id} }

// DomainRefName references a domain by display string or program name.
func DomainRefName(name string) DomainRef { return DomainRef{Kind: DomainByName, Name: name} }

// DomainRefObject wraps a full domain object.
func DomainRefObject(d Domain) DomainRef { return DomainRef{Kind: DomainObject, Object: d} }

// UnmarshalJSON accepts null, a number, a string or an object.
func (r *DomainRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = NoDomain()
		return nil
	}
	switch trimmed[0] {
	case '{':
		var d Domain
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return fmt.Errorf("decode domain object: %w", err)
		}
		*r = DomainRefObject(d)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode domain name: %w", err)
		}
		*r = DomainRefName(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("decode domain id: %w", err)
		}
		id, err := n.Int64()
		if err != nil {
			return fmt.Errorf("decode domain id %q: %w", n, err)
		}
		*r = DomainRefID(id)
	}
	return nil
}

// MarshalJSON writes the domain back in the shape it holds; absent becomes null.
func (r DomainRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case DomainObject:
		return json.Marshal(r.Object)
	case DomainByID:
		return json.Marshal(r.ID)
	case DomainByName:
		return json.Marshal(r.Name)
	default:
		return []byte("null"), nil
	}
}

// DomainLabel renders a single human label for a domain value.
func DomainLabel(ref DomainRef) string {
	switch ref.Kind {
	case DomainByName:
		if ref.Name == "" {
			return "-"
		}
		return ref.Name
	case DomainByID:
		return strconv.FormatInt(ref.ID, 10)
	case DomainObject:
		program := strings.TrimSpace(ref.Object.Program)
		batch := strings.TrimSpace(ref.Object.Batch)
		switch {
		case program == "" && batch == "":
			return "-"
		case batch == "":
			return program
		case program == "":
			return batch
		}
		return fmt.Sprintf("%s (%s)", program, batch)
	default:
		return "-"
	}
}

// ResolveDomain upgrades an id or name reference to the matching loaded domain
// object. References with no match are returned unchanged.
func ResolveDomain(ref DomainRef, domains []Domain) DomainRef {
	switch ref.Kind {
	case DomainByID:
		if d, ok := FindDomainByID(domains, ref.ID); ok {
			return DomainRefObject(d)
		}
	case DomainByName:
		if d, ok := FindDomainByProgram(domains, ref.Name); ok {
			return DomainRefObject(d)
		}
	}
	return ref
}

// FindDomainByID looks up a loaded domain by identifier.
func FindDomainByID(domains []Domain, id int64) (Domain, bool) {
	for _, d := range domains {
		if d.DomainID == id {
			return d, true
		}
	}
	return Domain{}, false
}

// FindDomainByProgram returns the first loaded domain whose program matches exactly.
func FindDomainByProgram(domains []Domain, program string) (Domain, bool) {
	for _, d := range domains {
		if d.Program == program {
			return d, true
		}
	}
	return Domain{}, false
}

// FindDomainByProgramBatch matches on both program and batch.
func FindDomainByProgramBatch(domains []Domain, program, batch string) (Domain, bool) {
	for _, d := range domains {
		if d.Program == program && d.Batch == batch {
			return d, true
		}
	}
	return Domain{}, false
}
