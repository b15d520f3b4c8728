package resolve_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/hydroponica/ecdash/internal/resolve"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestResolveFindsNFDFileWithNFCKeyword(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, norm.NFD.String("송도고_환경데이터.csv"))
	touch(t, dir, "README.txt")

	path, ok, err := resolve.Resolve(dir, []string{norm.NFC.String("송도고"), norm.NFC.String("환경데이터")}, ".csv")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected a match across normalization forms")
	}
	if !strings.HasSuffix(path, ".csv") {
		t.Fatalf("unexpected match %q", path)
	}
}

func TestResolveSuffixIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "생육결과_최종.XLSX")

	_, ok, err := resolve.Resolve(dir, []string{"생육결과"}, ".xlsx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected .XLSX to satisfy .xlsx suffix")
	}
}

func TestResolveSuffixFiltersOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "생육결과.csv")

	_, ok, err := resolve.Resolve(dir, []string{"생육결과"}, ".xlsx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok {
		t.Fatal(".csv file must not satisfy .xlsx suffix")
	}
}

func TestResolveNoMatchIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt")

	path, ok, err := resolve.Resolve(dir, []string{"하늘고"}, "")
	if err != nil {
		t.Fatalf("no-match must not produce an error: %v", err)
	}
	if ok || path != "" {
		t.Fatalf("expected no match, got %q", path)
	}
}

func TestResolveMissingDirectoryIsEmpty(t *testing.T) {
	_, ok, err := resolve.Resolve(filepath.Join(t.TempDir(), "absent"), []string{"x"}, "")
	if err != nil {
		t.Fatalf("missing directory must not be fatal: %v", err)
	}
	if ok {
		t.Fatal("missing directory cannot match")
	}
}

func TestResolveIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "하늘고_환경데이터.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, ok, err := resolve.Resolve(dir, []string{"하늘고"}, ".csv")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok {
		t.Fatal("directories must not be matched")
	}
}
