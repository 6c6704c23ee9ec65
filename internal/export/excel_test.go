package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type mockSource struct {
	rows []Row
}

func (m *mockSource) FetchRows(_ context.Context) ([]Row, error) {
	return m.rows, nil
}

func TestBuild_Layout(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	src := &mockSource{rows: []Row{
		{
			PrescriptionID:    uuid.New(),
			EstablishmentName: "Sunrise Home",
			ResidentName:      "Martin Alice",
			Room:              "12",
			Floor:             "2",
			MedicationName:    "Paracetamol 500mg",
			Dosage:            "1 tablet",
			Moments:           "Morning, Evening",
			StartDate:         time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			EndDate:           &end,
			Active:            true,
		},
		{
			PrescriptionID:    uuid.New(),
			EstablishmentName: "Sunrise Home",
			ResidentName:      "Dupont Bernard",
			MedicationName:    "Ibuprofen 200mg",
			Dosage:            "2 tablets",
			Moments:           "Noon",
			StartDate:         time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}}

	data, err := NewService(src).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Prescription ID" || rows[0][5] != "Medication" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][2] != "Martin Alice" || rows[1][7] != "Morning, Evening" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[1][8] != "05/01/2025" || rows[1][9] != "30/06/2025" {
		t.Errorf("dates not formatted day/month/year: %v", rows[1])
	}
	if rows[2][9] != "" {
		t.Errorf("open-ended prescription must leave end date blank, got %q", rows[2][9])
	}
}

func TestBuild_EmptyRegister(t *testing.T) {
	data, err := NewService(&mockSource{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty register still carries its header row, got %d rows", len(rows))
	}
}
