package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/testutil"
)

func TestXLSXWriterWritesSheet(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.January, 1), 985, 801)
	table.Records[0].Category = models.CategoryHigh
	table.Records[1].Category = models.CategoryLow

	path := filepath.Join(t.TempDir(), "export.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(table))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "count", rows[0][1])
	assert.Equal(t, "rental_category", rows[0][len(rows[0])-1])
	assert.Equal(t, "2011-01-01", rows[1][0])
	assert.Equal(t, "985", rows[1][1])
	assert.Equal(t, "High", rows[1][len(rows[1])-1])
	assert.Equal(t, "Low", rows[2][len(rows[2])-1])
}
