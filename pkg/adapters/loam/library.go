// Package loam reads a directory of machine documents through the Loam
// document library. Markdown files carry the definition in their front matter
// and may use the body as description; yaml and json files are plain documents.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one machine document of the library.
type Entry struct {
	ID   string
	Path string
	Spec schema.DefinitionSpec
}

// Library lists machine definitions stored in a Loam repository.
type Library struct {
	Repo *loam.TypedRepository[MachineMetadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[MachineMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only repository on dir.
func Open(dir string) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open machine library %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[MachineMetadata](repo)), nil
}

// Load decodes every document, sorted by ID. The ID is the metadata id if set,
// otherwise the document path without extension.
func (l *Library) Load(ctx context.Context) ([]Entry, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		spec, err := compiler.Decode(doc.Data.raw())
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if spec.Name == "" {
			spec.Name = DisplayName(id)
		}
		if spec.Description == "" {
			spec.Description = strings.TrimSpace(doc.Content)
		}
		entries = append(entries, Entry{ID: id, Path: doc.ID, Spec: spec})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// DisplayName derives a title from a document id: "binary_increment" -> "Binary Increment".
func DisplayName(id string) string {
	base := filepath.Base(filepath.FromSlash(id))
	words := strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return cases.Title(language.English).String(words)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
