package turing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/adapters/loam"
	"github.com/aretw0/turing/pkg/domain"
)

// LoadReport summarizes a library sync.
type LoadReport struct {
	Loaded  []string
	Skipped []string
}

// LoadLibrary registers every machine document under dir. Markdown, YAML and
// JSON documents are read through Loam; ".tm" files use the line format.
// The document slug becomes the definition ID, and IDs that already exist are
// skipped so a shared store can be synced by several processes.
func (s *Service) LoadLibrary(ctx context.Context, dir string) (LoadReport, error) {
	var report LoadReport

	lib, err := loam.Open(dir)
	if err != nil {
		return report, err
	}
	entries, err := lib.Load(ctx)
	if err != nil {
		return report, err
	}

	textEntries, err := loadTextMachines(dir)
	if err != nil {
		return report, err
	}
	entries = append(entries, textEntries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if prev, dup := seen[e.ID]; dup {
			return report, fmt.Errorf("machine id %q defined by both %s and %s", e.ID, prev, e.Path)
		}
		seen[e.ID] = e.Path

		_, err := s.registry.Put(ctx, e.ID, e.Spec)
		switch {
		case errors.Is(err, domain.ErrDefinitionExists):
			report.Skipped = append(report.Skipped, e.ID)
		case err != nil:
			return report, fmt.Errorf("machine %s: %w", e.Path, err)
		default:
			report.Loaded = append(report.Loaded, e.ID)
		}
	}

	s.logger.InfoContext(ctx, "machine library loaded",
		"dir", dir,
		"loaded", len(report.Loaded),
		"skipped", len(report.Skipped),
	)
	return report, nil
}

func loadTextMachines(dir string) ([]loam.Entry, error) {
	var entries []loam.Entry
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".tm" {
			return nil
		}
		spec, err := compiler.ParseFile(path)
		if err != nil {
			return fmt.Errorf("machine %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, ".tm"))
		if spec.Name == "" {
			spec.Name = loam.DisplayName(id)
		}
		entries = append(entries, loam.Entry{ID: id, Path: path, Spec: spec})
		return nil
	})
	return entries, err
}
