package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilarsid/review-service/pkg/database"
)

func TestUpMigrations(t *testing.T) {
	names, err := database.UpMigrations(FS)

	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_create_reviews.up.sql", names[0])
}

func TestEveryUpHasDown(t *testing.T) {
	names, err := database.UpMigrations(FS)
	require.NoError(t, err)

	for _, up := range names {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestReviewsSchema(t *testing.T) {
	data, err := fs.ReadFile(FS, "000001_create_reviews.up.sql")
	require.NoError(t, err)

	schema := string(data)
	assert.Contains(t, schema, "CHECK (rating BETWEEN 1 AND 5)")
	assert.Contains(t, schema, "comment     VARCHAR(1000) NOT NULL")
}
