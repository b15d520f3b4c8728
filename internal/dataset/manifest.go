package dataset

import (
	"github.com/hydroponica/ecdash/internal/resolve"
)

// Manifest maps logical datasets to resolved paths. It is computed once per
// session and handed to Load, so file discovery happens in exactly one place.
type Manifest struct {
	EnvFiles   map[string]string // group name -> environment CSV path; absent when not found
	GrowthFile string            // "" when the growth workbook was not found
}

// BuildManifest resolves every expected dataset under dataDir. A group whose
// environment CSV is missing is simply left out of EnvFiles; the growth
// workbook being missing leaves GrowthFile empty. Neither is an error here —
// Load decides what is fatal.
func BuildManifest(dataDir string, groups []Group, envMarker, growthKeyword string) (Manifest, error) {
	m := Manifest{EnvFiles: make(map[string]string, len(groups))}
	for _, g := range groups {
		path, ok, err := resolve.Resolve(dataDir, []string{g.Name, envMarker}, ".csv")
		if err != nil {
			return Manifest{}, err
		}
		if ok {
			m.EnvFiles[g.Name] = path
		}
	}
	path, ok, err := resolve.Resolve(dataDir, []string{growthKeyword}, ".xlsx")
	if err != nil {
		return Manifest{}, err
	}
	if ok {
		m.GrowthFile = path
	}
	return m, nil
}
