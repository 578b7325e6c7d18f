// Package datasync exports the review state to snapshot files and merges snapshots back in by id.
package datasync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/at-ishikawa/revisit/internal/persistence"
	"github.com/at-ishikawa/revisit/internal/review"
)

// ImportResult tracks counts for each entity kind.
type ImportResult struct {
	CategoriesNew     int
	CategoriesSkipped int
	CategoriesUpdated int
	SubjectsNew       int
	SubjectsSkipped   int
	SubjectsUpdated   int
	ItemsNew          int
	ItemsSkipped      int
	ItemsUpdated      int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

//go:generate mockgen -source=datasync.go -destination=../mocks/datasync/mock_target.go -package=mock_datasync

// Target receives the merged state together with the state it was merged into, so that a
// target changed in the meantime can refuse it. dispatch.Dispatcher and client.Client implement it.
type Target interface {
	Replace(ctx context.Context, base, state review.State) (review.State, error)
}

// Importer merges a snapshot into the current state and reports every entity it touched.
type Importer struct {
	target Target
	writer io.Writer
}

func NewImporter(target Target, writer io.Writer) *Importer {
	return &Importer{
		target: target,
		writer: writer,
	}
}

// Import adds entities of incoming whose id is unknown to current, after the existing ones.
// Known ids are skipped, or overwritten in place with UpdateExisting.
// With DryRun nothing is written to the target.
func (imp *Importer) Import(ctx context.Context, current, incoming review.State, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	merged := current.Clone()

	merged.Categories = mergeByID(imp.writer, "category", merged.Categories, incoming.Categories, opts,
		func(c review.Category) (string, string) { return c.ID, c.Label },
		&result.CategoriesNew, &result.CategoriesSkipped, &result.CategoriesUpdated)
	merged.Subjects = mergeByID(imp.writer, "subject", merged.Subjects, incoming.Subjects, opts,
		func(s review.Subject) (string, string) { return s.ID, s.Label },
		&result.SubjectsNew, &result.SubjectsSkipped, &result.SubjectsUpdated)
	merged.Items = mergeByID(imp.writer, "item", merged.Items, incoming.Items, opts,
		func(i review.Item) (string, string) { return i.ID, i.Label },
		&result.ItemsNew, &result.ItemsSkipped, &result.ItemsUpdated)

	if opts.DryRun {
		return &result, nil
	}
	if _, err := imp.target.Replace(ctx, current, merged); err != nil {
		return nil, fmt.Errorf("target.Replace() > %w", err)
	}
	return &result, nil
}

func mergeByID[T any](
	w io.Writer,
	kind string,
	existing, incoming []T,
	opts ImportOptions,
	describe func(T) (string, string),
	newCount, skippedCount, updatedCount *int,
) []T {
	index := make(map[string]int, len(existing))
	for i, entity := range existing {
		id, _ := describe(entity)
		index[id] = i
	}

	for _, entity := range incoming {
		id, label := describe(entity)
		i, ok := index[id]
		if !ok {
			index[id] = len(existing)
			existing = append(existing, entity)
			fmt.Fprintf(w, "  [NEW]  %s %q (%s)\n", kind, label, id)
			*newCount++
			continue
		}
		if !opts.UpdateExisting || cmp.Equal(existing[i], entity) {
			fmt.Fprintf(w, "  [SKIP]  %s %q (%s)\n", kind, label, id)
			*skippedCount++
			continue
		}
		existing[i] = entity
		fmt.Fprintf(w, "  [UPDATE]  %s %q (%s)\n", kind, label, id)
		*updatedCount++
	}
	return existing
}

// Exporter writes the state as a snapshot file.
type Exporter struct {
	fs        afero.Fs
	codec     persistence.Codec
	extension string
}

// NewExporter returns an exporter for "json" or "yaml". An empty format means yaml.
func NewExporter(format string) (*Exporter, error) {
	if format == "" {
		format = "yaml"
	}
	codec, err := persistence.NewCodec(format)
	if err != nil {
		return nil, fmt.Errorf("persistence.NewCodec() > %w", err)
	}
	return &Exporter{
		fs:        afero.NewOsFs(),
		codec:     codec,
		extension: "." + format,
	}, nil
}

func (e *Exporter) Export(w io.Writer, state review.State) error {
	data, err := e.codec.Encode(state)
	if err != nil {
		return fmt.Errorf("codec.Encode() > %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("w.Write() > %w", err)
	}
	return nil
}

// ExportFile writes revisit-<date> with the exporter's extension into directory and returns its path.
func (e *Exporter) ExportFile(directory string, state review.State, today review.Date) (path string, err error) {
	if err := e.fs.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("fs.MkdirAll(%s) > %w", directory, err)
	}
	path = filepath.Join(directory, fmt.Sprintf("revisit-%s%s", today, e.extension))
	file, err := e.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("fs.Create(%s) > %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			path, err = "", fmt.Errorf("file.Close() > %w", closeErr)
		}
	}()

	if err := e.Export(file, state); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSnapshot reads a snapshot file, picking the codec from its extension.
func ReadSnapshot(path string) (review.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return review.State{}, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var codec persistence.Codec = persistence.YAMLCodec{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		codec = persistence.JSONCodec{}
	}
	state, err := codec.Decode(data)
	if err != nil {
		return review.State{}, fmt.Errorf("decode %s > %w", path, err)
	}
	return state, nil
}
