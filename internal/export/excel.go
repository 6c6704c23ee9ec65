// Package export produces the prescription register spreadsheet the
// pharmacy hands to auditors.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
)

// Row is one line of the register: a prescription joined with its
// resident, establishment and medication.
type Row struct {
	PrescriptionID    uuid.UUID
	EstablishmentName string
	ResidentName      string
	Room              string
	Floor             string
	MedicationName    string
	Dosage            string
	Moments           string
	StartDate         time.Time
	EndDate           *time.Time
	Active            bool
}

// Source loads register rows, newest prescriptions first.
type Source interface {
	FetchRows(ctx context.Context) ([]Row, error)
}

type sourcePG struct {
	pool *pgxpool.Pool
}

// NewSourcePG returns a PostgreSQL-backed register source.
func NewSourcePG(pool *pgxpool.Pool) Source {
	return &sourcePG{pool: pool}
}

func (s *sourcePG) FetchRows(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, e.name,
		       r.last_name || ' ' || r.first_name,
		       coalesce(r.room, ''), coalesce(r.floor, ''),
		       m.name, p.dosage_instructions,
		       concat_ws(', ',
		           CASE WHEN p.morning THEN 'Morning' END,
		           CASE WHEN p.noon THEN 'Noon' END,
		           CASE WHEN p.evening THEN 'Evening' END,
		           CASE WHEN p.bedtime THEN 'Bedtime' END,
		           nullif(p.other_time, '')),
		       p.start_date, p.end_date,
		       p.start_date <= now() AND (p.end_date IS NULL OR p.end_date >= now())
		FROM prescription p
		JOIN resident r ON r.id = p.resident_id
		JOIN establishment e ON e.id = r.establishment_id
		JOIN medication m ON m.id = p.medication_id
		ORDER BY p.start_date DESC, p.resident_id ASC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("fetch register rows: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		err := rows.Scan(&row.PrescriptionID, &row.EstablishmentName,
			&row.ResidentName, &row.Room, &row.Floor,
			&row.MedicationName, &row.Dosage, &row.Moments,
			&row.StartDate, &row.EndDate, &row.Active)
		if err != nil {
			return nil, fmt.Errorf("scan register row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

const sheetName = "Prescriptions"

var headers = []string{
	"Prescription ID", "Establishment", "Resident", "Room", "Floor",
	"Medication", "Dosage", "Moments", "Start Date", "End Date", "Active",
}

// Service builds the xlsx register document.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Build fetches the register and lays it out as a styled worksheet.
func (s *Service) Build(ctx context.Context) ([]byte, error) {
	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		end := ""
		if row.EndDate != nil {
			end = row.EndDate.Format("02/01/2006")
		}
		values := []any{
			row.PrescriptionID.String(), row.EstablishmentName,
			row.ResidentName, row.Room, row.Floor,
			row.MedicationName, row.Dosage, row.Moments,
			row.StartDate.Format("02/01/2006"), end, row.Active,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 38); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "H", 22); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
