package service

import (
	"context"
	"fmt"
	"time"

	"github.com/askhat/gigledger/internal/config"
	"github.com/askhat/gigledger/internal/model"
	"github.com/askhat/gigledger/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

// ReportService runs the read-only aggregations and builds the exportable
// earnings report. Admin only; there are no invariants to maintain here.
type ReportService struct {
	repo             *repository.ReportRepository
	excel            ExcelGenerator
	pdf              PDFGenerator
	bestClientsLimit int
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(repo *repository.ReportRepository, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		repo:             repo,
		excel:            excel,
		pdf:              pdf,
		bestClientsLimit: cfg.Ledger.BestClientsLimit,
	}
}

// BestProfession returns the profession that earned the most over paid jobs
// with a payment date in [start, end]. Empty string when nothing was paid.
func (s *ReportService) BestProfession(ctx context.Context, principal model.Principal, start, end time.Time) (string, error) {
	if !principal.IsAdmin() {
		return "", ErrPermissionDenied
	}
	if err := validatePeriod(start, end); err != nil {
		return "", err
	}
	row, err := s.repo.BestProfession(ctx, start, end)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", nil
	}
	return row.Profession, nil
}

func (s *ReportService) BestClients(ctx context.Context, principal model.Principal, start, end time.Time, limit int) ([]model.ClientTotal, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.bestClientsLimit
	}
	return s.repo.TopClients(ctx, start, end, limit)
}

func (s *ReportService) ExportExcel(ctx context.Context, principal model.Principal, start, end time.Time) (*ExportResult, error) {
	report, err := s.buildReport(ctx, principal, start, end)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: buildFileName(*report, "xlsx"), Content: content}, nil
}

func (s *ReportService) ExportPDF(ctx context.Context, principal model.Principal, start, end time.Time) (*ExportResult, error) {
	report, err := s.buildReport(ctx, principal, start, end)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: buildFileName(*report, "pdf"), Content: content}, nil
}

func (s *ReportService) buildReport(ctx context.Context, principal model.Principal, start, end time.Time) (*model.EarningsReport, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}

	total, err := s.repo.TotalPaid(ctx, start, end)
	if err != nil {
		return nil, err
	}
	profession, err := s.repo.BestProfession(ctx, start, end)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.TopClients(ctx, start, end, s.bestClientsLimit)
	if err != nil {
		return nil, err
	}

	report := &model.EarningsReport{
		PeriodStart: start,
		PeriodEnd:   end,
		TotalPaid:   total,
		Clients:     clients,
	}
	if profession != nil {
		report.BestProfession = profession.Profession
	}
	return report, nil
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}

func buildFileName(report model.EarningsReport, ext string) string {
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("earnings-%s.%s", period, ext)
}
