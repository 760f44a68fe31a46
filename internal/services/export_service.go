package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/csvio"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/store"
)

// ErrExport wraps any failure while producing an export.
var ErrExport = errors.New("export failed")

// ExportFile is a finished CSV download.
type ExportFile struct {
	Name  string
	Data  []byte
	Count int
}

type ExportService struct {
	store    store.ExpenseReader
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time
}

func NewExportService(s store.ExpenseReader, n notify.Notifier, logger *log.Logger) *ExportService {
	return &ExportService{
		store:    s,
		notifier: n,
		logger:   logger.WithComponent(log.ComponentExport),
		now:      time.Now,
	}
}

// Export renders the whole collection into memory. Nothing is handed out
// unless rendering succeeded.
func (s *ExportService) Export(ctx context.Context) (ExportFile, error) {
	file, err := s.render(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Export failed", err, log.OpExport, nil)
		notifyOrLog(ctx, s.notifier, s.logger, notify.Failure(titleExportFailed, descExportFailed))
		return ExportFile{}, fmt.Errorf("%w: %w", ErrExport, err)
	}

	s.logger.InfoContext(ctx, "Export finished", log.FieldFile, file.Name, log.FieldCount, file.Count)
	notifyOrLog(ctx, s.notifier, s.logger, notify.New(titleExportOK, fmt.Sprintf("%d expenses exported", file.Count)))
	return file, nil
}

func (s *ExportService) render(ctx context.Context) (ExportFile, error) {
	expenses, err := s.store.Expenses(ctx)
	if err != nil {
		return ExportFile{}, err
	}
	var buf bytes.Buffer
	if err := csvio.Export(&buf, expenses); err != nil {
		return ExportFile{}, err
	}
	return ExportFile{
		Name:  csvio.ExportFilename(s.now()),
		Data:  buf.Bytes(),
		Count: len(expenses),
	}, nil
}
