package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainRefUnmarshal(t *testing.T) {
	cases := []struct {
		raw  string
		want DomainRef
	}{
		{raw: `null`, want: NoDomain()},
		{raw: `3`, want: DomainRefID(3)},
		{raw: `"M.Tech"`, want: DomainRefName("M.Tech")},
		{raw: `{"domainId":3,"program":"M.Tech","batch":"2023"}`, want: DomainRefObject(Domain{DomainID: 3, Program: "M.Tech", Batch: "2023"})},
	}
	for _, tc := range cases {
		var ref DomainRef
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &ref), tc.raw)
		assert.Equal(t, tc.want, ref, tc.raw)
	}

	var ref DomainRef
	assert.Error(t, json.Unmarshal([]byte(`3.5`), &ref))
}

func TestDomainRefMarshal(t *testing.T) {
	out, err := json.Marshal(NoDomain())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = json.Marshal(DomainRefObject(Domain{DomainID: 3, Program: "M.Tech", Batch: "2023"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"domainId":3,"program":"M.Tech","batch":"2023"}`, string(out))
}

func TestDomainLabel(t *testing.T) {
	cases := []struct {
		name string
		ref  DomainRef
		want string
	}{
		{name: "absent", ref: NoDomain(), want: "-"},
		{name: "string", ref: DomainRefName("M.Tech"), want: "M.Tech"},
		{name: "empty string", ref: DomainRefName(""), want: "-"},
		{name: "id", ref: DomainRefID(12), want: "12"},
		{name: "program and batch", ref: DomainRefObject(Domain{Program: "M.Tech", Batch: "2023"}), want: "M.Tech (2023)"},
		{name: "program only", ref: DomainRefObject(Domain{Program: "M.Tech"}), want: "M.Tech"},
		{name: "batch only", ref: DomainRefObject(Domain{Batch: "2023"}), want: "2023"},
		{name: "empty object", ref: DomainRefObject(Domain{}), want: "-"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DomainLabel(tc.ref), tc.name)
	}
}

func TestResolveDomain(t *testing.T) {
	domains := []Domain{{DomainID: 3, Program: "M.Tech", Batch: "2023"}}

	assert.Equal(t, DomainRefObject(domains[0]), ResolveDomain(DomainRefID(3), domains))
	assert.Equal(t, DomainRefObject(domains[0]), ResolveDomain(DomainRefName("M.Tech"), domains))
	assert.Equal(t, DomainRefID(9), ResolveDomain(DomainRefID(9), domains))
	assert.Equal(t, NoDomain(), ResolveDomain(NoDomain(), domains))
}
