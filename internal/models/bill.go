package models

import (
	"time"

	"github.com/google/uuid"
)

type Bill struct {
	ID              uuid.UUID `json:"id" db:"id"`
	RentalHistoryID uuid.UUID `json:"rental_history_id" db:"rental_history_id"`
	BillNumber      string    `json:"bill_number" db:"bill_number"`
	IssueDate       time.Time `json:"issue_date" db:"issue_date"`
	Amount          float64   `json:"amount" db:"amount"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// BillRecord is a bill joined with its rental history and display names.
type BillRecord struct {
	Bill
	RentalDate               time.Time `json:"rental_date"`
	PreviousWaterMeter       *float64  `json:"previous_water_meter"`
	CurrentWaterMeter        *float64  `json:"current_water_meter"`
	WaterUnits               float64   `json:"water_units"`
	WaterBill                float64   `json:"water_bill"`
	PreviousElectricityMeter *float64  `json:"previous_electricity_meter"`
	CurrentElectricityMeter  *float64  `json:"current_electricity_meter"`
	ElectricityUnits         float64   `json:"electricity_units"`
	ElectricityBill          float64   `json:"electricity_bill"`
	WaterImagePath           *string   `json:"water_image_path"`
	ElectricityImagePath     *string   `json:"electricity_image_path"`
	Username                 string    `json:"username"`
	ProjectName              string    `json:"project_name"`
	RecorderUsername         string    `json:"recorder_username"`
	OwnerFirstName           *string   `json:"owner_first_name"`
	OwnerLastName            *string   `json:"owner_last_name"`
}

// MonthlySummaryRow aggregates billing per month and project.
type MonthlySummaryRow struct {
	Month            string    `json:"month"`
	ProjectID        uuid.UUID `json:"project_id"`
	ProjectName      string    `json:"project_name"`
	Entries          int       `json:"entries"`
	RentTotal        float64   `json:"rent_total"`
	WaterTotal       float64   `json:"water_total"`
	ElectricityTotal float64   `json:"electricity_total"`
	GrandTotal       float64   `json:"grand_total"`
}
