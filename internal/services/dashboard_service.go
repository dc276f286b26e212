package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tablero/internal/core"
	"tablero/internal/dashboard"
	"tablero/internal/export"
	"tablero/internal/ingest"
	"tablero/internal/log"
	"tablero/internal/sheets"
)

// DashboardNotifier is told about every dashboard written to disk.
type DashboardNotifier interface {
	PublishDashboardGenerated(ctx context.Context, runID, output string, records int, years []string) error
}

// Report summarizes one generation run.
type Report struct {
	RunID        string
	Records      int
	Dropped      int
	Stats        ingest.Stats
	Years        []string
	MonthsByYear map[string][]string
	Bytes        int
}

// DashboardService orchestrates read, normalize and build for one source.
type DashboardService struct {
	source   sheets.TableReader
	mapping  ingest.ColumnMapping
	notifier DashboardNotifier
	logger   *log.Logger
}

// NewDashboardService wires a source. A nil mapping uses the default column
// names and a nil notifier disables notifications.
func NewDashboardService(source sheets.TableReader, mapping ingest.ColumnMapping, notifier DashboardNotifier, logger *log.Logger) *DashboardService {
	if mapping == nil {
		mapping = ingest.DefaultColumnMapping()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DashboardService{
		source:   source,
		mapping:  mapping,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentDashboard),
	}
}

// Generate builds the dashboard in memory. A missing source is returned as
// *core.SourceNotFoundError; every other failure as *core.ProcessingError.
func (s *DashboardService) Generate(ctx context.Context) (core.DashboardData, Report, error) {
	report := Report{RunID: uuid.NewString()}
	logger := s.logger.With(log.FieldRunID, report.RunID)

	table, err := s.source.ReadTable(ctx)
	if err != nil {
		return core.DashboardData{}, report, stageError(core.StageRead, err)
	}
	logger.DebugContext(ctx, "Source table read", log.FieldRows, table.Len())

	records, stats, err := ingest.Normalize(table, s.mapping)
	if err != nil {
		return core.DashboardData{}, report, stageError(core.StageNormalize, err)
	}
	report.Stats = stats
	report.Records = len(records)
	report.Dropped = stats.Dropped()
	if stats.Dropped() > 0 || stats.CoercedQuantities > 0 {
		logger.WarnContext(ctx, "Rows dropped or coerced during normalization",
			"empty_rows", stats.EmptyRows,
			"invalid_dates", stats.InvalidDates,
			"coerced_quantities", stats.CoercedQuantities)
	}

	data := dashboard.Build(records)

	report.Years = data.Keys()
	report.MonthsByYear = make(map[string][]string, data.Len())
	for _, y := range data.Entries() {
		report.MonthsByYear[y.Key] = y.Value.Keys()
	}
	return data, report, nil
}

// Document generates the dashboard and encodes it.
func (s *DashboardService) Document(ctx context.Context) ([]byte, Report, error) {
	data, report, err := s.Generate(ctx)
	if err != nil {
		return nil, report, err
	}
	b, err := export.Encode(data)
	if err != nil {
		return nil, report, stageError(core.StageEncode, err)
	}
	report.Bytes = len(b)
	return b, report, nil
}

// Run generates the dashboard and writes it to outputPath. Nothing is written
// unless every earlier stage succeeded.
func (s *DashboardService) Run(ctx context.Context, outputPath string) (Report, error) {
	b, report, err := s.Document(ctx)
	if err != nil {
		return report, err
	}
	if err := export.WriteBytes(outputPath, b); err != nil {
		return report, stageError(core.StageWrite, err)
	}

	log.NewStructuredLogger(s.logger).LogDashboardGenerated(ctx, report.RunID, report.Records, report.Dropped, report.Years, outputPath)
	s.logProgress(ctx, report)
	s.notify(ctx, report, outputPath)
	return report, nil
}

func (s *DashboardService) logProgress(ctx context.Context, report Report) {
	s.logger.InfoContext(ctx, "Years processed",
		log.FieldRunID, report.RunID,
		log.FieldYears, strings.Join(report.Years, ", "))
	for _, y := range report.Years {
		s.logger.InfoContext(ctx, "Months for year",
			log.FieldRunID, report.RunID,
			log.FieldYear, y,
			log.FieldMonths, strings.Join(report.MonthsByYear[y], ", "))
	}
}

func (s *DashboardService) notify(ctx context.Context, report Report, outputPath string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishDashboardGenerated(ctx, report.RunID, outputPath, report.Records, report.Years); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish dashboard notification",
			log.FieldRunID, report.RunID,
			log.FieldError, err)
	}
}

func stageError(stage string, err error) error {
	var nf *core.SourceNotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	var pe *core.ProcessingError
	if errors.As(err, &pe) {
		return pe
	}
	return &core.ProcessingError{Stage: stage, Err: err}
}

// Summary renders the report as one line for command output.
func (r Report) Summary() string {
	parts := make([]string, 0, len(r.Years))
	for _, y := range r.Years {
		parts = append(parts, fmt.Sprintf("%s: %s", y, strings.Join(r.MonthsByYear[y], ", ")))
	}
	return fmt.Sprintf("%d records (%d dropped); %s", r.Records, r.Dropped, strings.Join(parts, "; "))
}
