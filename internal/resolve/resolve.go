// Package resolve locates dataset files by fuzzy, normalization-aware name
// matching instead of fixed paths.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hydroponica/ecdash/internal/names"
)

// Resolve scans dir for the first regular file whose name contains every
// keyword (normalization-aware substring match) and, when suffix is non-empty,
// whose extension matches it case-insensitively.
//
// A missing directory is treated as an empty directory, and a directory with
// no matching file returns ok=false; neither is an error. Callers must treat
// ok=false as a normal outcome for optional datasets.
//
// When several files match, the first in os.ReadDir order wins. That order is
// deterministic within a run but not guaranteed stable across platforms.
func Resolve(dir string, keywords []string, suffix string) (path string, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if suffix != "" && !strings.EqualFold(filepath.Ext(name), suffix) {
			continue
		}
		if matchesAll(name, keywords) {
			return filepath.Join(dir, name), true, nil
		}
	}
	return "", false, nil
}

func matchesAll(name string, keywords []string) bool {
	for _, kw := range keywords {
		if !names.Contains(name, kw) {
			return false
		}
	}
	return true
}
