package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
)

func sampleBookings() []models.Booking {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []models.Booking{
		{ID: 1, ItemID: 3, ItemName: "Drill", BookerID: 2, BookerName: "Bob", Start: start, End: start.Add(2 * time.Hour), Status: models.BookingApproved},
		{ID: 2, ItemID: 3, ItemName: "Drill", BookerID: 4, BookerName: "Dan", Start: start.Add(24 * time.Hour), End: start.Add(26 * time.Hour), Status: models.BookingWaiting},
	}
}

func TestWriteBookings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, sampleBookings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"1", "3", "Drill", "2", "Bob", "2025-06-01 10:00", "2025-06-01 12:00", "APPROVED"}, rows[1])
	assert.Equal(t, "WAITING", rows[2][7])
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveBookings(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	path, err := SaveBookings(dir, 7, sampleBookings(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bookings_owner_7_2025-06-01_12-30-00.xlsx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
