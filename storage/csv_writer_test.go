package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/testutil"
	"bikeshare-dashboard/utils"
)

func TestCSVWriterOutputReloads(t *testing.T) {
	src, err := readString(t, testutil.DailyCSV(testutil.Day(2011, time.January, 1), 10))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "filtered.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(src))
	require.NoError(t, w.Close())

	reloaded, err := NewCSVSource(path, utils.Discard()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.Columns, reloaded.Columns)
	assert.Equal(t, src.Records, reloaded.Records)
}

func TestCSVWriterAddsCategoryColumn(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.January, 1), 10, 20, 30)
	table.Records[0].Category = models.CategoryLow
	table.Records[1].Category = models.CategoryMedium
	table.Records[2].Category = models.CategoryHigh

	path := filepath.Join(t.TempDir(), "categorized.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(table))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], ",rental_category"))
	assert.True(t, strings.HasSuffix(lines[1], ",Low"))
	assert.True(t, strings.HasSuffix(lines[3], ",High"))
	assert.True(t, strings.HasPrefix(lines[1], "2011-01-01,10,"))
}
