package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/ops?sslmode=disable", pgx5URL("postgres://u:p@db:5432/ops?sslmode=disable"))
	assert.Equal(t, "pgx5://u:p@db/ops", pgx5URL("postgresql://u:p@db/ops"))
	assert.Equal(t, "pgx5://ya/convertida", pgx5URL("pgx5://ya/convertida"))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	v := nullIfEmpty("A")
	if assert.NotNil(t, v) {
		assert.Equal(t, "A", *v)
	}
	assert.Equal(t, "", derefString(nil))
}

func TestMigrationsEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 4, "up y down por cada versión")
}
