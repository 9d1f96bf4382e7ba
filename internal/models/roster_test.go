package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRosterDomainLabelFor(t *testing.T) {
	r := Roster{Domains: loadedDomains}

	assert.Equal(t, "M.Tech (2023)", r.DomainLabelFor(Student{Domain: DomainRefID(3)}))
	assert.Equal(t, "42", r.DomainLabelFor(Student{Domain: DomainRefID(42)}))
	assert.Equal(t, "M.Tech", r.DomainLabelFor(Student{Domain: DomainRefName("M.Tech")}))
	assert.Equal(t, "-", r.DomainLabelFor(Student{}))
}

func TestRosterDomainPath(t *testing.T) {
	r := Roster{Domains: loadedDomains}

	assert.Equal(t, "/domains/3", r.DomainPath(Student{Domain: DomainRefObject(loadedDomains[0])}))
	assert.Equal(t, "/domains/4", r.DomainPath(Student{Domain: DomainRefName("iMTech")}))
	assert.Equal(t, "/domains/PhD%20Research", r.DomainPath(Student{Domain: DomainRefObject(Domain{Program: "PhD Research"})}))
	assert.Equal(t, "/domains/42", r.DomainPath(Student{Domain: DomainRefID(42)}))
	assert.Equal(t, "", r.DomainPath(Student{}))
}
