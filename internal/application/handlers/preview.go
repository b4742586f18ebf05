package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/etov/internal/domain/services"
)

// PreviewHandler builds the catalog without touching the note store.
type PreviewHandler struct {
	ingest       *services.IngestService
	materializer *services.Materializer
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(ingest *services.IngestService, materializer *services.Materializer) *PreviewHandler {
	return &PreviewHandler{
		ingest:       ingest,
		materializer: materializer,
	}
}

// PreviewNote is a note that a run would write.
type PreviewNote struct {
	Path    string
	Content string
}

// Handle reads src and returns the in-memory catalog.
func (h *PreviewHandler) Handle(ctx context.Context, src services.Source) (*services.IngestResult, error) {
	result, err := h.ingest.Ingest(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("building preview: %w", err)
	}
	return result, nil
}

// Notes lists the perfume notes a run would write under outputDir, in
// catalog order, followed by the empty accord notes.
func (h *PreviewHandler) Notes(result *services.IngestResult, outputDir string, labels services.Labels, withAccords bool) []PreviewNote {
	notes := make([]PreviewNote, 0, result.Catalog.Len()+result.Accords.Len())
	for _, p := range result.Catalog.Perfumes() {
		notes = append(notes, PreviewNote{
			Path:    h.materializer.PerfumePath(outputDir, p),
			Content: services.RenderPerfume(p, labels, withAccords),
		})
	}
	for _, accord := range result.Accords.Values() {
		notes = append(notes, PreviewNote{Path: h.materializer.AccordPath(outputDir, accord)})
	}
	return notes
}
