package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://u@db/planner", "pgx5://u@db/planner"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, driverURL(tt.in))
		})
	}
}

func TestEmbeddedFiles(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"001_init.down.sql",
		"001_init.up.sql",
		"002_indexes.down.sql",
		"002_indexes.up.sql",
	}, names)

	initUp, err := fs.ReadFile(files, "001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(initUp), "CHECK (priority IN (1, 2, 3))")
	assert.Contains(t, string(initUp), "CREATE TRIGGER tasks_updated_at")
}
