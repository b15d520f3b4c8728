package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hydroponica/ecdash/internal/names"
	"github.com/hydroponica/ecdash/internal/xlsx"
)

var (
	// ErrNoData signals that not a single group's environment data could be
	// loaded. The dashboard has nothing to show; startup must halt.
	ErrNoData = errors.New("no environment data loaded for any group")
	// ErrGrowthMissing signals that the consolidated growth workbook was not
	// found. Growth data is all-or-nothing, so this is fatal.
	ErrGrowthMissing = errors.New("growth workbook not found")
)

// Load reads every dataset named by the manifest.
//
// Environment data is best-effort: a group with a missing file is absent from
// the result, and a malformed file is reported in the LoadReport and skipped.
// The growth workbook is all-or-nothing: missing or malformed fails the load.
// A load with zero environment groups also fails.
func Load(m Manifest, groups []Group) (*Tables, *LoadReport, error) {
	t := &Tables{Groups: groups, Env: make(map[string][]EnvironmentRecord)}
	rep := &LoadReport{}

	for _, g := range groups {
		path, ok := m.EnvFiles[g.Name]
		if !ok {
			continue
		}
		recs, err := loadEnvCSV(path, g.Name)
		if err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		t.Env[g.Name] = recs
	}

	if m.GrowthFile == "" {
		return nil, rep, ErrGrowthMissing
	}
	growth, err := loadGrowth(m.GrowthFile, groups, rep)
	if err != nil {
		return nil, rep, fmt.Errorf("load %s: %w", filepath.Base(m.GrowthFile), err)
	}
	t.Growth = growth

	if len(t.Env) == 0 {
		return nil, rep, ErrNoData
	}
	return t, rep, nil
}

// Column aliases, tried in order against folded header cells. Field teams
// exported Korean headers; English fallbacks cover re-exports.
var (
	envFields   = []string{"time", "temperature", "humidity", "ph", "ec"}
	envAliases  = map[string][]string{
		"time":        {"time", "시간", "날짜", "date"},
		"temperature": {"temperature", "temp", "온도"},
		"humidity":    {"humidity", "습도"},
		"ph":          {"ph"},
		"ec":          {"ec", "전기전도도"},
	}
	growthFields  = []string{"leaf", "shoot", "root", "weight"}
	growthAliases = map[string][]string{
		"leaf":   {"잎", "leaf"},
		"shoot":  {"지상부", "shoot"},
		"root":   {"지하부", "root"},
		"weight": {"생중량", "fresh", "weight"},
	}
)

// mapColumns resolves each field to a header index by folded substring match.
func mapColumns(header []string, fields []string, aliases map[string][]string) (map[string]int, error) {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = names.Fold(h)
	}
	out := make(map[string]int, len(fields))
	for _, field := range fields {
	aliasLoop:
		for _, alias := range aliases[field] {
			a := names.Fold(alias)
			for i, h := range folded {
				if strings.Contains(h, a) {
					out[field] = i
					break aliasLoop
				}
			}
		}
		if _, ok := out[field]; !ok {
			return nil, fmt.Errorf("column for %q not found in header %v", field, header)
		}
	}
	return out, nil
}

func loadEnvCSV(path, group string) ([]EnvironmentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header, envFields, envAliases)
	if err != nil {
		return nil, err
	}

	var recs []EnvironmentRecord
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if blankRow(rec) {
			continue
		}
		er := EnvironmentRecord{Group: group, Timestamp: cell(rec, cols["time"])}
		if er.Temperature, err = parseNumber(cell(rec, cols["temperature"])); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if er.Humidity, err = parseNumber(cell(rec, cols["humidity"])); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if er.PH, err = parseNumber(cell(rec, cols["ph"])); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if er.EC, err = parseNumber(cell(rec, cols["ec"])); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		recs = append(recs, er)
	}
	return recs, nil
}

// loadGrowth reads the consolidated workbook: one sheet per group, matched by
// normalization-aware name comparison. Sheets that match no configured group
// are reported and skipped.
func loadGrowth(path string, groups []Group, rep *LoadReport) ([]GrowthRecord, error) {
	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	var out []GrowthRecord
	for _, sheet := range wb.Sheets() {
		g, ok := matchGroup(sheet, groups)
		if !ok {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("sheet %q matches no configured group, skipped", sheet))
			continue
		}
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) < 2 {
			continue // header only, or empty sheet
		}
		cols, err := mapColumns(rows[0], growthFields, growthAliases)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for i, row := range rows[1:] {
			if blankRow(row) {
				continue
			}
			gr := GrowthRecord{Group: g.Name, EC: g.EC}
			if gr.LeafCount, err = parseNumber(cell(row, cols["leaf"])); err != nil {
				return nil, fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
			}
			if gr.ShootLength, err = parseNumber(cell(row, cols["shoot"])); err != nil {
				return nil, fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
			}
			if gr.RootLength, err = parseNumber(cell(row, cols["root"])); err != nil {
				return nil, fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
			}
			if gr.FreshWeight, err = parseNumber(cell(row, cols["weight"])); err != nil {
				return nil, fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
			}
			out = append(out, gr)
		}
	}
	return out, nil
}

func matchGroup(sheet string, groups []Group) (Group, bool) {
	for _, g := range groups {
		if names.Equal(g.Name, sheet) {
			return g, true
		}
	}
	return Group{}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses a measurement cell. Blank cells become NaN (missing, not
// zero); comma decimals from Korean locale exports are accepted.
func parseNumber(s string) (float64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if raw == "" {
		return math.NaN(), nil
	}
	// A single comma followed by one or two digits is a decimal comma.
	// Three digits after the comma reads as a thousands separator, which
	// the measurement scales here never produce; reject it as malformed.
	if i := strings.IndexByte(raw, ','); i >= 0 &&
		strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") &&
		len(raw)-i-1 > 0 && len(raw)-i-1 < 3 {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return f, nil
}
