package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Select("file_id", "filename").
			From("output_files").
			Where("project = ?", "Acme").
			Where("batch = ?", 3).
			OrderBy("file_id").
			Limit(10).
			Offset(20).
			Build()
		assert.Equal(t, "SELECT file_id, filename FROM output_files WHERE project = $1 AND batch = $2 ORDER BY file_id LIMIT 10 OFFSET 20", query)
		assert.Equal(t, []interface{}{"Acme", 3}, args)
	})

	t.Run("Insert", func(t *testing.T) {
		query, args := NewSQLBuilder().
			Insert("output_files", "project", "filename").
			Values("Acme", "a.xlsx").
			Build()
		assert.Equal(t, "INSERT INTO output_files (project, filename) VALUES ($1, $2)", query)
		assert.Equal(t, []interface{}{"Acme", "a.xlsx"}, args)
	})

	t.Run("Insert on conflict", func(t *testing.T) {
		query, _ := NewSQLBuilder().
			Insert("output_files", "project", "filename").
			Values("Acme", "a.xlsx").
			OnConflictDoNothing("project", "filename").
			Build()
		assert.Equal(t, "INSERT INTO output_files (project, filename) VALUES ($1, $2) ON CONFLICT (project, filename) DO NOTHING", query)
	})

	t.Run("Delete", func(t *testing.T) {
		query, args := NewSQLBuilder().Delete("output_files").Where("project = ?", "Acme").Build()
		assert.Equal(t, "DELETE FROM output_files WHERE project = $1", query)
		assert.Equal(t, []interface{}{"Acme"}, args)
	})
}

func TestSQLBuilder_BuildSafe(t *testing.T) {
	sql, args, err := NewSQLBuilder().Select("*").From("output_files").Where("project = ? AND batch = ?", "Acme", 1).BuildSafe()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM output_files WHERE project = $1 AND batch = $2", sql)
	assert.Len(t, args, 2)

	tests := []struct {
		name string
		b    *SQLBuilder
	}{
		{"missing verb", NewSQLBuilder().From("output_files")},
		{"missing table", NewSQLBuilder().Select("*")},
		{"argument mismatch", NewSQLBuilder().Select("*").From("t").Where("a = ? AND b = ?", 1)},
		{"value mismatch", NewSQLBuilder().Insert("t", "a", "b").Values(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.b.BuildSafe()
			assert.Error(t, err)
		})
	}
}
