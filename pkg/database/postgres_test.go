package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-student-portal/pkg/config"
)

func TestDSN(t *testing.T) {
	raw := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "portal",
		Password: "p@ss word",
		Name:     "student_portal",
		SSLMode:  "disable",
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/student_portal", u.Path)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "student-portal-audit", u.Query().Get("application_name"))
}
