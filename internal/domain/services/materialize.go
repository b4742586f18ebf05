package services

import (
	"context"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/ports"
)

// Layout selects where notes are placed under the output directory.
type Layout string

const (
	// LayoutNested writes perfumes and accords into their own sub-folders.
	LayoutNested Layout = "nested"
	// LayoutFlat writes every note directly into the output directory.
	LayoutFlat Layout = "flat"
)

// IsValid reports whether the layout is known.
func (l Layout) IsValid() bool {
	return l == LayoutNested || l == LayoutFlat
}

// AccordFilePolicy decides what happens to accord notes that already exist.
type AccordFilePolicy string

const (
	// AccordCreate always creates the note; an existing one makes the store fail.
	AccordCreate AccordFilePolicy = "create"
	// AccordSkip leaves existing notes untouched.
	AccordSkip AccordFilePolicy = "skip"
	// AccordReset overwrites existing notes with empty content.
	AccordReset AccordFilePolicy = "reset"
)

// IsValid reports whether the policy is known.
func (p AccordFilePolicy) IsValid() bool {
	switch p {
	case AccordCreate, AccordSkip, AccordReset:
		return true
	default:
		return false
	}
}

// noteExt is the extension of every generated note.
const noteExt = ".md"

// MaterializeOptions controls the output layout and note format.
type MaterializeOptions struct {
	Layout         Layout
	PerfumeFolder  string
	AccordFolder   string
	Labels         Labels
	IncludeAccords bool
	AccordPolicy   AccordFilePolicy
}

// DefaultMaterializeOptions returns the nested layout with stock labels.
func DefaultMaterializeOptions() MaterializeOptions {
	return MaterializeOptions{
		Layout:         LayoutNested,
		PerfumeFolder:  "perfume",
		AccordFolder:   "accord",
		Labels:         DefaultLabels(),
		IncludeAccords: true,
		AccordPolicy:   AccordCreate,
	}
}

// MaterializeResult counts what was written.
type MaterializeResult struct {
	FoldersCreated int
	Created        int
	Overwritten    int
	Skipped        int
}

// Written returns the number of files created or overwritten.
func (r *MaterializeResult) Written() int {
	return r.Created + r.Overwritten
}

// Materializer writes perfumes and accords into a file store.
type Materializer struct {
	store  ports.FileStore
	logger *zap.Logger
	opts   MaterializeOptions
}

// NewMaterializer creates a new materializer.
func NewMaterializer(store ports.FileStore, logger *zap.Logger, opts MaterializeOptions) *Materializer {
	return &Materializer{
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// Materialize writes one note per perfume and one empty note per accord.
// Folders are created before any file. The first store failure stops the
// run; files already written stay in place.
func (m *Materializer) Materialize(ctx context.Context, catalog *entities.Catalog, accords *entities.AccordSet, outputRoot string) (*MaterializeResult, error) {
	result := &MaterializeResult{}
	perfumeDir, accordDir := m.folders(outputRoot)

	for _, dir := range uniqueFolders(outputRoot, perfumeDir, accordDir) {
		created, err := m.ensureFolder(ctx, dir)
		if err != nil {
			return result, err
		}
		if created {
			result.FoldersCreated++
		}
	}

	for _, p := range catalog.Perfumes() {
		if err := m.writePerfume(ctx, perfumeDir, p, result); err != nil {
			return result, err
		}
	}

	for _, accord := range accords.Values() {
		if err := m.writeAccord(ctx, accordDir, accord, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// PerfumePath returns the note path of a perfume.
func (m *Materializer) PerfumePath(outputRoot string, p *entities.Perfume) string {
	perfumeDir, _ := m.folders(outputRoot)
	return path.Join(perfumeDir, p.Name+noteExt)
}

// AccordPath returns the note path of an accord.
func (m *Materializer) AccordPath(outputRoot, accord string) string {
	_, accordDir := m.folders(outputRoot)
	return path.Join(accordDir, accord+noteExt)
}

func (m *Materializer) folders(outputRoot string) (perfumeDir, accordDir string) {
	if m.opts.Layout == LayoutFlat {
		return outputRoot, outputRoot
	}
	return path.Join(outputRoot, m.opts.PerfumeFolder), path.Join(outputRoot, m.opts.AccordFolder)
}

func (m *Materializer) ensureFolder(ctx context.Context, dir string) (bool, error) {
	exists, err := m.store.FolderExists(ctx, dir)
	if err != nil {
		return false, &entities.StoreWriteError{Op: "stat folder", Path: dir, Err: err}
	}
	if exists {
		return false, nil
	}
	if err := m.store.CreateFolder(ctx, dir); err != nil {
		return false, &entities.StoreWriteError{Op: "create folder", Path: dir, Err: err}
	}
	m.logger.Info("created folder", zap.String("path", dir))
	return true, nil
}

func (m *Materializer) writePerfume(ctx context.Context, dir string, p *entities.Perfume, result *MaterializeResult) error {
	filePath := path.Join(dir, p.Name+noteExt)
	content := RenderPerfume(p, m.opts.Labels, m.opts.IncludeAccords)

	exists, err := m.store.FileExists(ctx, filePath)
	if err != nil {
		return &entities.StoreWriteError{Op: "stat", Path: filePath, Err: err}
	}

	if !exists {
		if err := m.store.Create(ctx, filePath, content); err != nil {
			return &entities.StoreWriteError{Op: "create", Path: filePath, Err: err}
		}
		result.Created++
	} else {
		if err := m.store.Write(ctx, filePath, content); err != nil {
			return &entities.StoreWriteError{Op: "write", Path: filePath, Err: err}
		}
		result.Overwritten++
	}

	m.logger.Debug("wrote perfume note",
		zap.String("code", p.Code),
		zap.String("path", filePath),
		zap.Bool("overwritten", exists),
	)
	return nil
}

func (m *Materializer) writeAccord(ctx context.Context, dir, accord string, result *MaterializeResult) error {
	filePath := path.Join(dir, accord+noteExt)

	switch m.opts.AccordPolicy {
	case AccordSkip, AccordReset:
		exists, err := m.store.FileExists(ctx, filePath)
		if err != nil {
			return &entities.StoreWriteError{Op: "stat", Path: filePath, Err: err}
		}
		if exists && m.opts.AccordPolicy == AccordSkip {
			result.Skipped++
			return nil
		}
		if exists {
			if err := m.store.Write(ctx, filePath, ""); err != nil {
				return &entities.StoreWriteError{Op: "write", Path: filePath, Err: err}
			}
			result.Overwritten++
			return nil
		}
	case AccordCreate:
	default:
		return fmt.Errorf("unknown accord file policy %q", m.opts.AccordPolicy)
	}

	if err := m.store.Create(ctx, filePath, ""); err != nil {
		return &entities.StoreWriteError{Op: "create", Path: filePath, Err: err}
	}
	result.Created++
	return nil
}

// uniqueFolders lists the folders to ensure, root first, without repeats.
func uniqueFolders(dirs ...string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
