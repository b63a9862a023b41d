package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// History status values. The server validates the label but enforces no
// transition machine: a record may be created in any of the three states.
const (
	HistoryStatusPending   = "pending"
	HistoryStatusCompleted = "completed"
	HistoryStatusCancelled = "cancelled"
)

func ValidHistoryStatus(status string) bool {
	return status == HistoryStatusPending || status == HistoryStatusCompleted || status == HistoryStatusCancelled
}

type RentalHistory struct {
	ID                       uuid.UUID `json:"id" db:"id"`
	UserID                   uuid.UUID `json:"user_id" db:"user_id"`
	RecorderID               uuid.UUID `json:"recorder_id" db:"recorder_id"`
	ProjectID                uuid.UUID `json:"project_id" db:"project_id"`
	RentalDate               time.Time `json:"rental_date" db:"rental_date"`
	Amount                   *float64  `json:"amount" db:"amount"`
	PreviousWaterMeter       *float64  `json:"previous_water_meter" db:"previous_water_meter"`
	CurrentWaterMeter        *float64  `json:"current_water_meter" db:"current_water_meter"`
	WaterUnits               float64   `json:"water_units" db:"water_units"`
	WaterBill                float64   `json:"water_bill" db:"water_bill"`
	PreviousElectricityMeter *float64  `json:"previous_electricity_meter" db:"previous_electricity_meter"`
	CurrentElectricityMeter  *float64  `json:"current_electricity_meter" db:"current_electricity_meter"`
	ElectricityUnits         float64   `json:"electricity_units" db:"electricity_units"`
	ElectricityBill          float64   `json:"electricity_bill" db:"electricity_bill"`
	WaterImagePath           *string   `json:"water_image_path" db:"water_image_path"`
	ElectricityImagePath     *string   `json:"electricity_image_path" db:"electricity_image_path"`
	WaterDescription         *string   `json:"water_description" db:"water_description"`
	ElectricityDescription   *string   `json:"electricity_description" db:"electricity_description"`
	Status                   string    `json:"status" db:"status"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// HistoryRecord is a rental history row joined with its display fields.
type HistoryRecord struct {
	RentalHistory
	ProjectName      string     `json:"project_name"`
	Username         string     `json:"username"`
	RecorderUsername string     `json:"recorder_username"`
	OwnerID          *uuid.UUID `json:"owner_id"`
	OwnerFirstName   *string    `json:"owner_first_name"`
	OwnerLastName    *string    `json:"owner_last_name"`
}

// HistoryFilter carries the optional listing filters. Zero values mean the
// filter is absent; Limit is only set when the raw input parsed as an integer.
type HistoryFilter struct {
	StartDate        string
	EndDate          string
	Status           string
	Month            string
	Year             string
	ProjectID        *uuid.UUID
	OwnerID          *uuid.UUID
	RecorderUsername string
	Username         string
	CreatedStartDate string
	CreatedEndDate   string
	Limit            *int
}

// NullableFloat accepts a JSON number, a numeric string, an empty string or
// null. Empty strings normalize to null instead of zero so that an omitted
// meter reading is stored as NULL.
type NullableFloat struct {
	Value *float64
}

func (n *NullableFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			n.Value = nil
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", s)
		}
		n.Value = &v
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableFloat) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
