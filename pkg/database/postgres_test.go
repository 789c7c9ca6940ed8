package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/studylab-api/pkg/config"
)

func TestDSNFromFields(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "studylab",
		Password: "p@ss word's",
		Name:     "studylab",
		SSLMode:  "disable",
	})
	assert.Equal(t, `host=db port=5432 user=studylab password='p@ss word\'s' dbname=studylab sslmode=disable application_name=studylab connect_timeout=5`, dsn)
}

func TestDSNSkipsEmptyValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Name: "studylab"})
	assert.NotContains(t, dsn, "password=")
	assert.NotContains(t, dsn, "sslmode=")
}

func TestDSNPrefersURL(t *testing.T) {
	url := "postgres://app:secret@db:5432/studylab?sslmode=require"
	assert.Equal(t, url, DSN(config.DatabaseConfig{URL: url, Host: "ignored"}))
}
