package export_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/hydroponica/ecdash/internal/dataset"
	"github.com/hydroponica/ecdash/internal/export"
	"github.com/hydroponica/ecdash/internal/stats"
	"github.com/hydroponica/ecdash/internal/xlsx"
)

func tables() *dataset.Tables {
	return &dataset.Tables{
		Groups: []dataset.Group{{Name: "송도고", EC: 1.0}, {Name: "하늘고", EC: 2.0}},
		Env: map[string][]dataset.EnvironmentRecord{
			"하늘고": {{Group: "하늘고", Timestamp: "2025-06-01 09:00", Temperature: 21.5, Humidity: 63, PH: 5.9, EC: 2.1}},
			"송도고": {{Group: "송도고", Timestamp: "2025-06-01 09:00", Temperature: 22, Humidity: 60, PH: 6, EC: 1.1}},
		},
		Growth: []dataset.GrowthRecord{
			{Group: "송도고", EC: 1.0, LeafCount: 5, ShootLength: 120, RootLength: 80, FreshWeight: 4},
		},
	}
}

func TestEnvironmentCSVGroupOrderAndContent(t *testing.T) {
	b, err := export.EnvironmentCSV(tables())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "group,time,temperature,humidity,ph,ec" {
		t.Fatalf("header: %q", lines[0])
	}
	// Configured order, not map order: 송도고 first.
	if !strings.HasPrefix(lines[1], "송도고,") || !strings.HasPrefix(lines[2], "하늘고,") {
		t.Fatalf("rows out of configured order: %v", lines[1:])
	}
}

func TestSummaryWorkbookReadableAndMissingIsBlank(t *testing.T) {
	sums := stats.Summarize(tables())
	b, err := export.SummaryWorkbook(sums)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	wb, err := xlsx.OpenBytes(b)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rows, err := wb.Rows("요약")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 group rows, got %d", len(rows))
	}
	// 하늘고 has no growth records: mean cells blank, count cell "0".
	haneul := rows[2]
	if haneul[0] != "하늘고" || haneul[7] != "0" {
		t.Fatalf("하늘고 row: %v", haneul)
	}
	for i := 8; i < len(haneul); i++ {
		if haneul[i] != "" {
			t.Fatalf("missing mean must be a blank cell, got %q at %d", haneul[i], i)
		}
	}
}

func TestGrowthWorkbookRoundTrip(t *testing.T) {
	b, err := export.GrowthWorkbook(tables().Growth)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	wb, err := xlsx.OpenBytes(b)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rows, err := wb.Rows("생육결과")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "송도고" || rows[1][5] != "4" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExportsAreDeterministic(t *testing.T) {
	sums := stats.Summarize(tables())
	a1, err := export.SummaryWorkbook(sums)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := export.SummaryWorkbook(sums)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a1, a2) {
		t.Fatal("summary workbook must be bit-identical across runs")
	}
	c1, err := export.EnvironmentCSV(tables())
	if err != nil {
		t.Fatal(err)
	}
	c2, err := export.EnvironmentCSV(tables())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c1, c2) {
		t.Fatal("environment csv must be bit-identical across runs")
	}
}

func TestNaNMeasurementExportsAsBlank(t *testing.T) {
	tab := tables()
	tab.Env["송도고"][0].PH = math.NaN()
	b, err := export.EnvironmentCSV(tab)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if !strings.Contains(lines[1], ",,") {
		t.Fatalf("NaN must export as empty field: %q", lines[1])
	}
}
