package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryUpMigrationHasDown(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)

	files := make(map[string]bool)
	for _, e := range entries {
		files[e.Name()] = true
	}

	ups := 0
	for name := range files {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		ups++
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		assert.True(t, files[down], "缺少 %s", down)
	}
	assert.Equal(t, 3, ups)
}

func TestSchemaContainsSelectionTables(t *testing.T) {
	content, err := fs.ReadFile(FS, "000003_create_exams.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(content), "exam_chapter_requirements")
	assert.Contains(t, string(content), "question_order")
}
