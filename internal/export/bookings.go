package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"shareit/internal/models"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	cellLayout  = "2006-01-02 15:04"
)

var headers = []string{"ID", "Item ID", "Item", "Booker ID", "Booker", "Start", "End", "Status"}

var statusFill = map[models.BookingStatus]string{
	models.BookingWaiting:  "#FFEB9C",
	models.BookingApproved: "#C6EFCE",
	models.BookingRejected: "#FFC7CE",
	models.BookingCanceled: "#EDEDED",
}

// WriteBookings renders bookings as a single-sheet workbook into w.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	f, err := build(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveBookings writes the workbook into dir and returns the file path.
func SaveBookings(dir string, ownerID int64, bookings []models.Booking, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := build(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(ownerID, now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// FileName names an owner's export file.
func FileName(ownerID int64, now time.Time) string {
	return fmt.Sprintf("bookings_owner_%d_%s.xlsx", ownerID, now.UTC().Format("2006-01-02_15-04-05"))
}

func build(bookings []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int, len(statusFill))
	for status, color := range statusFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}

	for i, b := range bookings {
		row := i + 2
		values := []any{
			b.ID, b.ItemID, b.ItemName, b.BookerID, b.BookerName,
			b.Start.UTC().Format(cellLayout), b.End.UTC().Format(cellLayout), string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		if style, ok := styles[b.Status]; ok {
			cell := fmt.Sprintf("H%d", row)
			_ = f.SetCellStyle(SheetName, cell, cell, style)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "B", 10)
	_ = f.SetColWidth(SheetName, "C", "C", 25)
	_ = f.SetColWidth(SheetName, "D", "D", 10)
	_ = f.SetColWidth(SheetName, "E", "E", 20)
	_ = f.SetColWidth(SheetName, "F", "G", 18)
	_ = f.SetColWidth(SheetName, "H", "H", 12)

	return f, nil
}
