// Package domain contains the core data types for the haul slip service.
// It is imported by every other internal package (repo, service, export, handler).
package domain

import "time"

// Slip is one recorded haul/delivery event.
// Slips are created once by the ingestion pipeline and never mutated afterwards,
// so UpdatedAt always equals CreatedAt.
type Slip struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	Driver        string    `json:"driver"`
	TruckNumber   string    `json:"truck_number"`
	Foreman       string    `json:"foreman"`
	Job           string    `json:"job"`
	HaulFrom      string    `json:"haul_from"`
	HaulTo        string    `json:"haul_to"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Material      string    `json:"material"`
	SignatureName string    `json:"signature_name"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Field keys, as they appear in submissions, storage columns, and CSV headers.
const (
	FieldID            = "id"
	FieldDate          = "date"
	FieldDriver        = "driver"
	FieldTruckNumber   = "truck_number"
	FieldForeman       = "foreman"
	FieldJob           = "job"
	FieldHaulFrom      = "haul_from"
	FieldHaulTo        = "haul_to"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldMaterial      = "material"
	FieldSignatureName = "signature_name"
	FieldNotes         = "notes"
	FieldCreatedAt     = "created_at"
	FieldUpdatedAt     = "updated_at"
)

// RequiredFields lists the submission keys that must be non-empty, in the
// canonical order used when reporting missing fields.
var RequiredFields = []string{
	FieldDate,
	FieldDriver,
	FieldTruckNumber,
	FieldJob,
	FieldHaulTo,
	FieldStartTime,
	FieldEndTime,
	FieldMaterial,
	FieldSignatureName,
}

// Columns is the fixed column order shared by the slips table, the daily CSV
// mirror, and the full-history export.
var Columns = []string{
	FieldID,
	FieldDate,
	FieldDriver,
	FieldTruckNumber,
	FieldForeman,
	FieldJob,
	FieldHaulFrom,
	FieldHaulTo,
	FieldStartTime,
	FieldEndTime,
	FieldMaterial,
	FieldSignatureName,
	FieldNotes,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// TimestampLayout is the textual form of CreatedAt/UpdatedAt in storage and CSV:
// UTC, second precision, trailing "Z".
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Record returns the slip as a flat string slice in Columns order.
func (s Slip) Record() []string {
	return []string{
		s.ID,
		s.Date,
		s.Driver,
		s.TruckNumber,
		s.Foreman,
		s.Job,
		s.HaulFrom,
		s.HaulTo,
		s.StartTime,
		s.EndTime,
		s.Material,
		s.SignatureName,
		s.Notes,
		FormatTimestamp(s.CreatedAt),
		FormatTimestamp(s.UpdatedAt),
	}
}
