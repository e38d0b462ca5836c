package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"timeledger/internal/models"
	"timeledger/pkg/database"
)

// Savers persist one mapped record per call. Each call runs in its own
// transaction so a failure partway through a file leaves earlier rows
// committed (partial success is the intended policy). A uniqueness
// violation must surface as database.ErrDuplicate.
type TaskActivitySaver interface {
	Create(ctx context.Context, activity *models.TaskActivity) error
}

type ExpenseSaver interface {
	Create(ctx context.Context, expense *models.Expense) error
}

type DropdownValueSaver interface {
	Create(ctx context.Context, value *models.DropdownValue) error
}

// Summary is the per-file import result returned to the caller. Duplicates
// are counted apart from errors: a skipped duplicate is success-adjacent,
// not a failure, and never appears in Errors.
type Summary struct {
	ProcessedCount int      `json:"processedCount"`
	SuccessCount   int      `json:"successCount"`
	ErrorCount     int      `json:"errorCount"`
	DuplicateCount int      `json:"duplicateCount"`
	Errors         []string `json:"errors"`
}

// Service runs the CSV import pipeline: charset detection, logical record
// accumulation, field splitting, entity mapping, validation and row-at-a-
// time persistence. Single-threaded, file order, no retries.
type Service struct {
	tasks     TaskActivitySaver
	expenses  ExpenseSaver
	dropdowns DropdownValueSaver
	validator *RecordValidator
	logger    *zap.Logger
}

// NewService creates an import service.
func NewService(
	tasks TaskActivitySaver,
	expenses ExpenseSaver,
	dropdowns DropdownValueSaver,
	logger *zap.Logger,
) *Service {
	return &Service{
		tasks:     tasks,
		expenses:  expenses,
		dropdowns: dropdowns,
		validator: NewRecordValidator(),
		logger:    logger,
	}
}

// ImportTaskActivities imports a task-activity CSV. Rows without a username
// column are attributed to defaultUsername.
func (s *Service) ImportTaskActivities(ctx context.Context, r io.Reader, defaultUsername string) (*Summary, error) {
	return s.importRows(ctx, r, func(ctx context.Context, rec Record) error {
		activity, err := MapTaskActivity(rec, defaultUsername)
		if err != nil {
			return err
		}
		if violations := s.validator.TaskActivity(activity); len(violations) > 0 {
			return errors.New(strings.Join(violations, "; "))
		}
		return s.tasks.Create(ctx, activity)
	})
}

// ImportExpenses imports an expense CSV.
func (s *Service) ImportExpenses(ctx context.Context, r io.Reader, defaultUsername string) (*Summary, error) {
	return s.importRows(ctx, r, func(ctx context.Context, rec Record) error {
		expense, err := MapExpense(rec, defaultUsername)
		if err != nil {
			return err
		}
		if violations := s.validator.Expense(expense); len(violations) > 0 {
			return errors.New(strings.Join(violations, "; "))
		}
		return s.expenses.Create(ctx, expense)
	})
}

// ImportDropdownValues imports a dropdown-value CSV.
func (s *Service) ImportDropdownValues(ctx context.Context, r io.Reader) (*Summary, error) {
	return s.importRows(ctx, r, func(ctx context.Context, rec Record) error {
		value, err := MapDropdownValue(rec)
		if err != nil {
			return err
		}
		if violations := s.validator.DropdownValue(value); len(violations) > 0 {
			return errors.New(strings.Join(violations, "; "))
		}
		return s.dropdowns.Create(ctx, value)
	})
}

// importRows is the single-pass fold over logical records. Three terminal
// outcomes per row: saved, duplicate-skipped, rejected-with-error. Only a
// failure to read the stream itself is fatal.
func (s *Service) importRows(ctx context.Context, r io.Reader, row func(context.Context, Record) error) (*Summary, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import stream: %w", err)
	}

	text, charset := DecodeBytes(raw)
	s.logger.Debug("Decoded import file",
		zap.String("charset", charset),
		zap.Int("bytes", len(raw)))

	reader := NewRecordReader(text)
	summary := &Summary{Errors: []string{}}

	headerLine, ok := reader.Next()
	if !ok {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read import stream: %w", err)
		}
		return summary, nil
	}
	headers := normalizeHeaders(SplitFields(headerLine))

	rowNumber := 1
	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		rowNumber++
		if strings.TrimSpace(line) == "" {
			continue
		}

		summary.ProcessedCount++
		rec := NewRecord(rowNumber, headers, SplitFields(line))

		if err := row(ctx, rec); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				summary.DuplicateCount++
				s.logger.Debug("Skipped duplicate row", zap.Int("row", rowNumber))
				continue
			}
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rowNumber, err))
			continue
		}
		summary.SuccessCount++
	}

	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import stream: %w", err)
	}

	s.logger.Info("Import completed",
		zap.Int("processed", summary.ProcessedCount),
		zap.Int("succeeded", summary.SuccessCount),
		zap.Int("failed", summary.ErrorCount),
		zap.Int("duplicates", summary.DuplicateCount))

	return summary, nil
}
