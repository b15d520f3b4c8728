package xlsx_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hydroponica/ecdash/internal/xlsx"
)

func fixtureSheets() []xlsx.Sheet {
	return []xlsx.Sheet{
		{
			Name: "송도고",
			Rows: [][]string{
				{"잎 수", "지상부 길이(mm)", "지하부길이(mm)", "생중량(g)"},
				{"5", "120.5", "80", "4"},
				{"6", "131", "85.5", "5"},
			},
		},
		{
			Name: "하늘고",
			Rows: [][]string{
				{"잎 수", "지상부 길이(mm)", "지하부길이(mm)", "생중량(g)"},
				{"7", "150", "90", "10"},
			},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b, err := xlsx.Bytes(fixtureSheets())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := xlsx.OpenBytes(b)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := wb.Sheets(); !reflect.DeepEqual(got, []string{"송도고", "하늘고"}) {
		t.Fatalf("sheet order: %v", got)
	}
	rows, err := wb.Rows("송도고")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := fixtureSheets()[0].Rows
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", rows, want)
	}
}

func TestOpenFromFile(t *testing.T) {
	b, err := xlsx.Bytes(fixtureSheets())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	p := filepath.Join(t.TempDir(), "생육결과.xlsx")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatal(err)
	}
	wb, err := xlsx.Open(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows, err := wb.Rows("하늘고")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "10" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestRowsUnknownSheet(t *testing.T) {
	b, err := xlsx.Bytes(fixtureSheets())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := xlsx.OpenBytes(b)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := wb.Rows("아라고"); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
}

func TestWriteDeterministic(t *testing.T) {
	a, err := xlsx.Bytes(fixtureSheets())
	if err != nil {
		t.Fatal(err)
	}
	b, err := xlsx.Bytes(fixtureSheets())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical input must produce identical workbook bytes")
	}
}

func TestWriteEscapesMarkup(t *testing.T) {
	sheets := []xlsx.Sheet{{Name: "A&B", Rows: [][]string{{"<note>", "x & y"}}}}
	b, err := xlsx.Bytes(sheets)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := xlsx.OpenBytes(b)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows, err := wb.Rows("A&B")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if rows[0][0] != "<note>" || rows[0][1] != "x & y" {
		t.Fatalf("escaping broke round trip: %v", rows)
	}
}

func TestOpenBytesGarbage(t *testing.T) {
	if _, err := xlsx.OpenBytes([]byte("not a zip")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

// minimalWorkbook assembles a workbook from raw worksheet XML, bypassing the
// writer so tests can exercise markup the writer never emits.
func minimalWorkbook(t *testing.T, sheetXML string) []byte {
	t.Helper()
	parts := map[string]string{
		"xl/workbook.xml":            `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets><sheet name="송도고" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships><Relationship Id="rId1" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/worksheets/sheet1.xml":   sheetXML,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRowsCellsWithoutReferences(t *testing.T) {
	// Some producers omit the r= cell reference and rely on position.
	sheet := `<worksheet><sheetData>` +
		`<row><c r="A1"><v>1</v></c><c><v>2</v></c><c r="D1"><v>3</v></c></row>` +
		`<row><c t="inlineStr"><is><t>잎 수</t></is></c><c><v>5</v></c></row>` +
		`</sheetData></worksheet>`
	wb, err := xlsx.OpenBytes(minimalWorkbook(t, sheet))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows, err := wb.Rows("송도고")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := [][]string{{"1", "2", "", "3"}, {"잎 수", "5"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("ref-less cells misplaced:\n got %v\nwant %v", rows, want)
	}
}
