package postgres_test

import (
	"testing"

	"github.com/Astemirdum/library-borrowing/pkg/postgres"
	"github.com/stretchr/testify/require"
)

func TestDB_DSN(t *testing.T) {
	cfg := postgres.DB{
		Host:     "db",
		Port:     "5433",
		Username: "library",
		Password: "p@ss word",
		NameDB:   "library",
		SSLMode:  "disable",
	}
	require.Equal(t, "postgres://library:p%40ss%20word@db:5433/library?sslmode=disable", cfg.DSN())
}
