package services

import (
	"testing"
	"time"

	"rentalbill/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func sampleHistoryRecord() *models.HistoryRecord {
	rec := &models.HistoryRecord{
		ProjectName:      "Baan Suan",
		Username:         "tenant1",
		RecorderUsername: "recorder1",
	}
	rec.ID = uuid.New()
	rec.RentalDate = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	rec.Amount = floatPtr(5000)
	rec.PreviousWaterMeter = floatPtr(100)
	rec.CurrentWaterMeter = floatPtr(120)
	rec.WaterUnits = 20
	rec.WaterBill = 200
	rec.Status = models.HistoryStatusPending
	rec.CreatedAt = time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)
	rec.UpdatedAt = rec.CreatedAt
	return rec
}

func TestHistoryWorkbook_HeadersAndValues(t *testing.T) {
	svc := NewExportService()
	rec := sampleHistoryRecord()

	buf, err := svc.HistoryWorkbook([]*models.HistoryRecord{rec})
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(exportSheetName)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0][:len(exportHeaders)])

	// Spot-check the data row: id, rental date, project, and the dash
	// placeholder for a missing owner.
	assert.Equal(t, rec.ID.String(), rows[1][0])
	assert.Equal(t, "2025-08-01", rows[1][1])
	assert.Equal(t, "Baan Suan", rows[1][16])
	assert.Equal(t, "-", rows[1][19])
}

func TestHistoryWorkbook_EmptyRecordSet(t *testing.T) {
	svc := NewExportService()

	buf, err := svc.HistoryWorkbook(nil)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	assert.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
