package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/hydroponica/ecdash/internal/config"
	"github.com/hydroponica/ecdash/internal/session"
	"github.com/hydroponica/ecdash/internal/xlsx"
)

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	env := "time,temperature,humidity,ph,ec\n" +
		"2025-06-01 09:00,22,60,6.0,1.1\n" +
		"2025-06-01 10:00,24,62,6.2,0.9\n"
	if err := os.WriteFile(filepath.Join(dir, "송도고_환경데이터.csv"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	header := []string{"잎 수", "지상부 길이(mm)", "지하부길이(mm)", "생중량(g)"}
	b, err := xlsx.Bytes([]xlsx.Sheet{
		{Name: "송도고", Rows: [][]string{header, {"5", "120", "80", "4"}, {"6", "130", "85", "5"}, {"6", "125", "82", "6"}}},
		{Name: "하늘고", Rows: [][]string{header, {"7", "150", "95", "10"}, {"7", "155", "93", "10"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "생육결과.xlsx"), b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:       dir,
		ImageDir:      filepath.Join(dir, "images"),
		EnvMarker:     "환경데이터",
		GrowthKeyword: "생육결과",
		Groups:        config.DefaultGroups(),
	}
}

func TestOpenSession(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	sess, err := session.Open(testConfig(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Fatal("session must carry an identity")
	}
	if len(sess.Summaries) != 4 {
		t.Fatalf("one summary per configured group, got %d", len(sess.Summaries))
	}
	best, ok := sess.Best()
	if !ok || best.Group != "하늘고" || best.EC != 2.0 || best.MeanFreshWeight != 10.0 {
		t.Fatalf("unexpected best: %+v ok=%v", best, ok)
	}
}

func TestOpenFailsFastWithoutGrowthWorkbook(t *testing.T) {
	dir := t.TempDir()
	env := "time,temperature,humidity,ph,ec\n2025-06-01,22,60,6,1\n"
	if err := os.WriteFile(filepath.Join(dir, "송도고_환경데이터.csv"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := session.Open(testConfig(dir)); err == nil {
		t.Fatal("missing growth workbook must fail the session open")
	}
}

func TestEnvForIsNormalizationAware(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	sess, err := session.Open(testConfig(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	recs, ok := sess.EnvFor(norm.NFD.String("송도고"))
	if !ok || len(recs) != 2 {
		t.Fatalf("NFD group lookup failed: ok=%v n=%d", ok, len(recs))
	}
	if _, ok := sess.EnvFor("하늘고"); ok {
		t.Fatal("group without env data must report absent")
	}
}

func TestImagesMissingDirIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	sess, err := session.Open(testConfig(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if imgs := sess.Images(); len(imgs) != 0 {
		t.Fatalf("missing image dir must yield no images, got %v", imgs)
	}

	imgDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"b.PNG", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(imgDir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	imgs := sess.Images()
	if len(imgs) != 2 || imgs[0] != "a.jpg" || imgs[1] != "b.PNG" {
		t.Fatalf("unexpected image list: %v", imgs)
	}
}
