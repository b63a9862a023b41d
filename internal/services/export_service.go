package services

import (
	"bytes"
	"fmt"
	"strings"

	"rentalbill/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Rental History"

// Column labels match the dashboard locale.
var exportHeaders = []string{
	"ID",
	"รอบวันที่",
	"จำนวนเงิน",
	"วันที่สร้าง",
	"วันที่อัปเดต",
	"มิเตอร์น้ำก่อนหน้า",
	"มิเตอร์น้ำปัจจุบัน",
	"หน่วยน้ำ",
	"ค่าน้ำ",
	"หมายเหตุค่าน้ำ",
	"มิเตอร์ไฟก่อนหน้า",
	"มิเตอร์ไฟปัจจุบัน",
	"หน่วยไฟ",
	"ค่าไฟ",
	"หมายเหตุค่าไฟ",
	"สถานะ",
	"โครงการ",
	"ผู้ใช้",
	"ผู้บันทึก",
	"เจ้าของ",
}

// ExportService renders history records as an xlsx workbook.
type ExportService interface {
	HistoryWorkbook(records []*models.HistoryRecord) (*bytes.Buffer, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

func (s *exportService) HistoryWorkbook(records []*models.HistoryRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		values := []any{
			rec.ID.String(),
			rec.RentalDate.Format("2006-01-02"),
			optionalNumber(rec.Amount),
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
			optionalNumber(rec.PreviousWaterMeter),
			optionalNumber(rec.CurrentWaterMeter),
			rec.WaterUnits,
			rec.WaterBill,
			dashIfEmpty(rec.WaterDescription),
			optionalNumber(rec.PreviousElectricityMeter),
			optionalNumber(rec.CurrentElectricityMeter),
			rec.ElectricityUnits,
			rec.ElectricityBill,
			dashIfEmpty(rec.ElectricityDescription),
			rec.Status,
			rec.ProjectName,
			rec.Username,
			rec.RecorderUsername,
			ownerDisplayName(rec.OwnerFirstName, rec.OwnerLastName),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func optionalNumber(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}

func dashIfEmpty(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func ownerDisplayName(first, last *string) string {
	name := strings.TrimSpace(fmt.Sprintf("%s %s", deref(first), deref(last)))
	if name == "" {
		return "-"
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
