package primary

import (
	"testing"

	"inkwell/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	got, err := migrateURL("postgres://u:p@localhost:5432/inkwell?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@localhost:5432/inkwell?sslmode=disable", got)

	got, err = migrateURL("postgresql://localhost/inkwell")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://localhost/inkwell", got)

	got, err = migrateURL("pgx5://localhost/inkwell")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://localhost/inkwell", got)

	_, err = migrateURL("host=localhost dbname=inkwell")
	assert.Error(t, err)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/x", redactDSN("postgres://user:secret@db:5432/x"))
	assert.Equal(t, "host=db", redactDSN("host=db"))
}

func TestSortColumn(t *testing.T) {
	assert.Equal(t, "c.title", sortColumn("title"))
	assert.Equal(t, "c.word_count", sortColumn("c.word_count"))
	assert.Equal(t, "c.created_at", sortColumn("created_at; DROP TABLE content"))
	assert.Equal(t, "c.created_at", sortColumn(""))
}

func TestMigrationFilesEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}

func TestStoreImplInterfaces(t *testing.T) {
	var s interface{} = &StoreImpl{}
	_, ok := s.(store.ContentStore)
	assert.True(t, ok, "ContentStore")
	_, ok = s.(store.TagStore)
	assert.True(t, ok, "TagStore")
	_, ok = s.(store.CategoryStore)
	assert.True(t, ok, "CategoryStore")
	_, ok = s.(store.JobStore)
	assert.True(t, ok, "JobStore")
}
