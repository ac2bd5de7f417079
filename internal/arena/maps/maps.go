// Package maps serves validated map documents to the engine. The embedded
// repository ships a small built-in catalog; deployments that curate maps
// externally implement the same Load contract in front of their store.
package maps

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

//go:embed documents/*.json
var documents embed.FS

// Repository is an in-memory map catalog keyed by document name.
type Repository struct {
	byName map[string]board.Document
}

// NewEmbedded loads the built-in catalog. Parse or validation failures are
// programmer errors in the shipped documents and surface at startup.
func NewEmbedded() (*Repository, error) {
	r := &Repository{byName: make(map[string]board.Document)}

	entries, err := fs.ReadDir(documents, "documents")
	if err != nil {
		return nil, fmt.Errorf("read embedded map catalog: %w", err)
	}
	for _, entry := range entries {
		raw, err := documents.ReadFile("documents/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read map %s: %w", entry.Name(), err)
		}
		var doc board.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse map %s: %w", entry.Name(), err)
		}
		if _, err := board.FromDocument(doc); err != nil {
			return nil, fmt.Errorf("validate map %s: %w", entry.Name(), err)
		}
		r.byName[doc.Name] = doc
	}
	return r, nil
}

// Load returns the document with the given name.
func (r *Repository) Load(_ context.Context, name string) (board.Document, error) {
	doc, ok := r.byName[name]
	if !ok {
		return board.Document{}, errors.New(errors.CodeNotFound, "map not found")
	}
	return doc, nil
}

// Names lists the catalog alphabetically.
func (r *Repository) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Static is a single-document Load implementation for tests.
type Static struct {
	Doc board.Document
}

// Load returns the static document regardless of name.
func (s Static) Load(_ context.Context, _ string) (board.Document, error) {
	return s.Doc, nil
}
