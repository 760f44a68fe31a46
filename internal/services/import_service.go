package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"

	"budgetbook/internal/csvio"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/store"
)

// ErrImportInProgress is returned when an import is attempted while another
// one is still running. The attempt is rejected, not queued.
var ErrImportInProgress = errors.New("import already in progress")

// ImportMode selects what an import does with the file.
type ImportMode string

const (
	// ImportCount only counts data lines and leaves the collection untouched.
	ImportCount ImportMode = "count"
	// ImportMerge parses the file and merges every valid row into the store.
	ImportMerge ImportMode = "merge"
)

// ImportOutcome describes a finished import.
type ImportOutcome struct {
	Mode     csvio.ImportMode `json:"mode"`
	Count    int              `json:"count"`
	Rejected []csvio.RowError `json:"-"`
}

type ImportService struct {
	store    store.ExpenseWriter
	notifier notify.Notifier
	logger   *log.Logger
	mode     ImportMode
	busy     *semaphore.Weighted
}

func NewImportService(s store.ExpenseWriter, n notify.Notifier, logger *log.Logger, mode ImportMode) *ImportService {
	if mode != ImportMerge {
		mode = ImportCount
	}
	return &ImportService{
		store:    s,
		notifier: n,
		logger:   logger.WithComponent(log.ComponentImport),
		mode:     mode,
		busy:     semaphore.NewWeighted(1),
	}
}

func (s *ImportService) Mode() ImportMode { return s.mode }

// Import reads r to completion and applies the configured mode. A read failure
// and a content failure are reported with different notifications; in both
// cases the collection is unchanged.
func (s *ImportService) Import(ctx context.Context, name string, r io.Reader) (ImportOutcome, error) {
	if !s.busy.TryAcquire(1) {
		s.logger.WarnContext(ctx, "Import rejected, another import is running", log.FieldFile, name)
		return ImportOutcome{}, ErrImportInProgress
	}
	defer s.busy.Release(1)

	out, err := s.run(ctx, r)
	if err != nil {
		desc := descImportParse
		if errors.Is(err, csvio.ErrRead) {
			desc = descImportRead
		}
		s.logger.LogError(ctx, "Import failed", err, log.OpImport, nil)
		notifyOrLog(ctx, s.notifier, s.logger, notify.Failure(titleImportFailed, desc))
		return ImportOutcome{}, err
	}

	s.logger.InfoContext(ctx, "Import finished",
		log.FieldFile, name,
		log.FieldMode, out.Mode,
		log.FieldCount, out.Count,
		"rejected", len(out.Rejected))
	notifyOrLog(ctx, s.notifier, s.logger, notify.New(titleImportOK, fmt.Sprintf("%d expenses imported", out.Count)))
	return out, nil
}

func (s *ImportService) run(ctx context.Context, r io.Reader) (ImportOutcome, error) {
	if s.mode == ImportCount {
		res, err := csvio.CountRows(r)
		if err != nil {
			return ImportOutcome{}, err
		}
		return ImportOutcome{Mode: res.Mode(), Count: res.Count()}, nil
	}

	res, err := csvio.Parse(r)
	if err != nil {
		return ImportOutcome{}, err
	}
	for _, re := range res.Errors {
		s.logger.DebugContext(ctx, "Skipping invalid row", "line", re.Line, log.FieldError, re.Err)
	}
	n, err := s.store.Merge(ctx, res.Expenses)
	if err != nil {
		return ImportOutcome{}, fmt.Errorf("merge imported expenses: %w", err)
	}
	return ImportOutcome{Mode: res.Mode(), Count: n, Rejected: res.Errors}, nil
}

// ImportFile imports the file at path. Failing to open it counts as a read
// failure.
func (s *ImportService) ImportFile(ctx context.Context, path string) (ImportOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return s.Import(ctx, filepath.Base(path), errReader{fmt.Errorf("open %s: %w", path, err)})
	}
	defer f.Close()
	return s.Import(ctx, filepath.Base(path), f)
}

// errReader fails every read with err.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
