package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/etov/internal/domain/entities"
	"github.com/ersonp/etov/internal/domain/mocks"
	"github.com/ersonp/etov/internal/domain/services"
)

var testSource = services.Source{Path: "perfumes.xlsx", KeywordSheet: "Keywords", AccordSheet: "Accords"}

func testWorkbook() *mocks.WorkbookReader {
	return &mocks.WorkbookReader{Sheets: map[string][]entities.Row{
		"Keywords": {
			{"code", "brand", "name", "keyword"},
			{"A", "BrandX", "NameX", "kw1"},
			{"A", "BrandX", "NameX", "kw2"},
			{"B", "BrandY", "NameY", "kw3"},
		},
		"Accords": {
			{"code", "brand", "name", "accords"},
			{"A", "BrandX", "NameX", "woody, floral"},
			{"B", "BrandY", "NameY", "floral"},
			{"Z", "BrandZ", "Ghost", "citrus"},
		},
	}}
}

type runFixture struct {
	handler *RunHandler
	reader  *mocks.WorkbookReader
	store   *mocks.FileStore
	status  *mocks.StatusReporter
	history *mocks.RunHistory
}

func newRunFixture(logger *zap.Logger) *runFixture {
	f := &runFixture{
		reader:  testWorkbook(),
		store:   mocks.NewFileStore(),
		status:  &mocks.StatusReporter{},
		history: &mocks.RunHistory{},
	}
	ingest := services.NewIngestService(f.reader, logger, services.DefaultIngestOptions())
	materializer := services.NewMaterializer(f.store, logger, services.DefaultMaterializeOptions())
	f.handler = NewRunHandler(ingest, materializer, f.status, f.history, logger)

	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f.handler.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	f.handler.newID = func() string { return "run-1" }
	return f
}

func TestRunHandler_Handle_Success(t *testing.T) {
	f := newRunFixture(zap.NewNop())

	result, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{StatusWorking, StatusDone}, f.status.Statuses)

	assert.Equal(t, "# 향수명: NameX\n\n- 브랜드: [[BrandX]]\n- 키워드: #kw1\n#kw2\n- 어코드:\n[[woody]]\n[[floral]]",
		f.store.Files["vault/perfume/NameX.md"])
	assert.Equal(t, "", f.store.Files["vault/accord/woody.md"])
	assert.Equal(t, "", f.store.Files["vault/accord/floral.md"])
	assert.NotContains(t, f.store.Files, "vault/accord/citrus.md")

	run := result.Run
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, entities.RunStatusDone, run.Status)
	assert.Equal(t, 2, run.Perfumes)
	assert.Equal(t, 2, run.Accords)
	assert.Equal(t, 4, run.FilesWritten)
	assert.Equal(t, []entities.UnresolvedKey{{Key: "Z", Name: "Ghost", Row: 4}}, run.Unresolved)
	assert.Positive(t, run.Duration())
}

func TestRunHandler_Handle_RecordsHistory(t *testing.T) {
	f := newRunFixture(zap.NewNop())

	_, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})
	require.NoError(t, err)

	// Saved once when started and once when finished.
	assert.Equal(t, 2, f.history.SaveRunCallCount)
	require.Len(t, f.history.Runs, 1)
	assert.Equal(t, entities.RunStatusDone, f.history.Runs[0].Status)
	assert.Equal(t, "perfumes.xlsx", f.history.Runs[0].SourcePath)
	assert.Equal(t, "vault", f.history.Runs[0].OutputDir)
	assert.Len(t, f.history.Runs[0].Unresolved, 1)
}

func TestRunHandler_Handle_Rerun(t *testing.T) {
	f := newRunFixture(zap.NewNop())
	f.handler.materializer = services.NewMaterializer(f.store, zap.NewNop(), services.MaterializeOptions{
		Layout:         services.LayoutNested,
		PerfumeFolder:  "perfume",
		AccordFolder:   "accord",
		Labels:         services.DefaultLabels(),
		IncludeAccords: true,
		AccordPolicy:   services.AccordSkip,
	})

	_, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})
	require.NoError(t, err)
	first := map[string]string{}
	for k, v := range f.store.Files {
		first[k] = v
	}

	result, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, f.store.Files)
	assert.Equal(t, 2, result.Materialize.Overwritten)
	assert.Equal(t, 2, result.Materialize.Skipped)
}

func TestRunHandler_Handle_DryRun(t *testing.T) {
	f := newRunFixture(zap.NewNop())

	result, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{DryRun: true})

	require.NoError(t, err)
	assert.Empty(t, f.store.Files)
	assert.Empty(t, f.store.CreateFolderCalls)
	assert.Equal(t, 0, f.history.SaveRunCallCount)
	assert.Nil(t, result.Materialize)
	assert.Equal(t, 2, result.Ingest.Catalog.Len())
	assert.Equal(t, []string{StatusWorking, StatusDone}, f.status.Statuses)
}

func TestRunHandler_Handle_SourceError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newRunFixture(zap.New(core))
	f.reader.Err = &entities.SourceAccessError{Path: "perfumes.xlsx", Err: errors.New("no such file")}

	result, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})

	require.Error(t, err)
	var srcErr *entities.SourceAccessError
	assert.ErrorAs(t, err, &srcErr)
	assert.Equal(t, StatusFailed, f.status.Last())
	assert.Empty(t, f.store.Files)

	assert.Equal(t, entities.RunStatusFailed, result.Run.Status)
	assert.Contains(t, result.Run.Error, "no such file")
	require.Len(t, f.history.Runs, 1)
	assert.Equal(t, entities.RunStatusFailed, f.history.Runs[0].Status)

	require.Equal(t, 1, logs.FilterMessage("run failed").Len())
}

func TestRunHandler_Handle_MissingSheet(t *testing.T) {
	f := newRunFixture(zap.NewNop())
	src := testSource
	src.AccordSheet = "Nope"

	_, err := f.handler.Handle(context.Background(), src, "vault", RunOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrSheetNotFound)
	assert.Empty(t, f.store.Files)
	assert.Equal(t, StatusFailed, f.status.Last())
}

func TestRunHandler_Handle_StoreError(t *testing.T) {
	f := newRunFixture(zap.NewNop())
	f.store.CreateErrs = map[string]error{"vault/perfume/NameY.md": errors.New("read-only")}

	result, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})

	require.Error(t, err)
	var storeErr *entities.StoreWriteError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "vault/perfume/NameY.md", storeErr.Path)
	assert.Contains(t, err.Error(), "writing notes")

	// Earlier writes stay, later ones never happen.
	assert.Contains(t, f.store.Files, "vault/perfume/NameX.md")
	assert.NotContains(t, f.store.Files, "vault/accord/woody.md")
	assert.Equal(t, 1, result.Run.FilesWritten)
	assert.Equal(t, StatusFailed, f.status.Last())
}

func TestRunHandler_Handle_HistoryErrorIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newRunFixture(zap.New(core))
	f.history.Err = errors.New("database is locked")

	_, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, StatusDone, f.status.Last())
	assert.Equal(t, 2, logs.FilterMessage("recording run history").Len())
}

func TestRunHandler_Handle_NilHistory(t *testing.T) {
	f := newRunFixture(zap.NewNop())
	f.handler.history = nil

	_, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, StatusDone, f.status.Last())
}

func TestRunHandler_Handle_FreshStatePerRun(t *testing.T) {
	f := newRunFixture(zap.NewNop())

	first, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{DryRun: true})
	require.NoError(t, err)
	second, err := f.handler.Handle(context.Background(), testSource, "vault", RunOptions{DryRun: true})
	require.NoError(t, err)

	a1, ok := first.Ingest.Catalog.Get("A")
	require.True(t, ok)
	a2, ok := second.Ingest.Catalog.Get("A")
	require.True(t, ok)
	assert.NotSame(t, a1, a2)
	assert.Equal(t, []string{"kw1", "kw2"}, a2.Keywords)
}
