// Package export serializes in-memory tables for download: summary and raw
// growth as spreadsheet byte streams, raw environment data as CSV text. These
// are pass-through renderings; unchanged input yields bit-identical output.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/hydroponica/ecdash/internal/dataset"
	"github.com/hydroponica/ecdash/internal/stats"
	"github.com/hydroponica/ecdash/internal/xlsx"
)

// SummaryWorkbook renders per-group summaries as a single-sheet workbook.
func SummaryWorkbook(sums []stats.GroupSummary) ([]byte, error) {
	rows := [][]string{{
		"학교", "목표 EC", "환경 측정 수", "온도 평균", "습도 평균", "pH 평균", "EC 평균",
		"개체 수", "잎 수 평균", "지상부 길이 평균(mm)", "지하부 길이 평균(mm)", "생중량 평균(g)",
	}}
	for _, s := range sums {
		rows = append(rows, []string{
			s.Group,
			num(s.EC),
			strconv.Itoa(s.EnvCount),
			mean(s.Temperature),
			mean(s.Humidity),
			mean(s.PH),
			mean(s.MeasuredEC),
			strconv.Itoa(s.GrowthCount),
			mean(s.LeafCount),
			mean(s.ShootLength),
			mean(s.RootLength),
			mean(s.FreshWeight),
		})
	}
	b, err := xlsx.Bytes([]xlsx.Sheet{{Name: "요약", Rows: rows}})
	if err != nil {
		return nil, fmt.Errorf("render summary workbook: %w", err)
	}
	return b, nil
}

// GrowthWorkbook renders the concatenated raw growth table as a workbook.
func GrowthWorkbook(recs []dataset.GrowthRecord) ([]byte, error) {
	rows := [][]string{{"학교", "EC", "잎 수", "지상부 길이(mm)", "지하부길이(mm)", "생중량(g)"}}
	for _, r := range recs {
		rows = append(rows, []string{
			r.Group, num(r.EC), num(r.LeafCount), num(r.ShootLength), num(r.RootLength), num(r.FreshWeight),
		})
	}
	b, err := xlsx.Bytes([]xlsx.Sheet{{Name: "생육결과", Rows: rows}})
	if err != nil {
		return nil, fmt.Errorf("render growth workbook: %w", err)
	}
	return b, nil
}

// EnvironmentCSV renders all environment records as CSV text, groups in
// configured order, rows in recorded order.
func EnvironmentCSV(t *dataset.Tables) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"group", "time", "temperature", "humidity", "ph", "ec"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, g := range t.Groups {
		for _, r := range t.Env[g.Name] {
			row := []string{r.Group, r.Timestamp, num(r.Temperature), num(r.Humidity), num(r.PH), num(r.EC)}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// num formats a value for a cell; NaN (missing) becomes an empty cell.
func num(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func mean(m stats.FieldMean) string {
	if m.Count == 0 {
		return ""
	}
	return num(m.Mean)
}
