// Package session performs the one-shot load that backs a dashboard session.
// File discovery, loading, and aggregation all happen once in Open; there is
// no package state and no hidden cache, so re-loading means opening a fresh
// session.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hydroponica/ecdash/internal/config"
	"github.com/hydroponica/ecdash/internal/dataset"
	"github.com/hydroponica/ecdash/internal/names"
	"github.com/hydroponica/ecdash/internal/stats"
)

// Session owns everything derived from one load of the data directory.
type Session struct {
	ID        uuid.UUID
	LoadedAt  time.Time
	Config    *config.Config
	Manifest  dataset.Manifest
	Tables    *dataset.Tables
	Summaries []stats.GroupSummary
	Report    *dataset.LoadReport
}

// Open resolves, loads, and aggregates the configured datasets. Any fatal
// load condition surfaces here, before a caller renders or serves anything.
func Open(cfg *config.Config) (*Session, error) {
	groups := make([]dataset.Group, len(cfg.Groups))
	for i, g := range cfg.Groups {
		groups[i] = dataset.Group{Name: g.Name, EC: g.EC}
	}

	m, err := dataset.BuildManifest(cfg.DataDir, groups, cfg.EnvMarker, cfg.GrowthKeyword)
	if err != nil {
		return nil, fmt.Errorf("resolve datasets: %w", err)
	}
	tables, rep, err := dataset.Load(m, groups)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        uuid.New(),
		LoadedAt:  time.Now(),
		Config:    cfg,
		Manifest:  m,
		Tables:    tables,
		Summaries: stats.Summarize(tables),
		Report:    rep,
	}, nil
}

// Best returns the best-performing group by mean fresh weight.
func (s *Session) Best() (stats.Best, bool) {
	return stats.BestByFreshWeight(s.Summaries)
}

// EnvFor returns the environment records for a group, matched by
// normalization-aware name comparison. ok is false when the group has no
// loaded environment data.
func (s *Session) EnvFor(group string) ([]dataset.EnvironmentRecord, bool) {
	for name, recs := range s.Tables.Env {
		if names.Equal(name, group) {
			return recs, true
		}
	}
	return nil, false
}

// Images lists reference image files in the configured image directory,
// sorted by name. A missing directory yields an empty list.
func (s *Session) Images() []string {
	entries, err := os.ReadDir(s.Config.ImageDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}
