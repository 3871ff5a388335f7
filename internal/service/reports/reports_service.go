package reports

import (
	"context"

	"github.com/Domenick1991/flytau/internal/repository"
)

// CancellationReport carries the per-month rates plus the summary figures
// shown alongside them.
type CancellationReport struct {
	Months     []repository.MonthlyCancellationRate `json:"months"`
	AvgPercent float64                              `json:"avg_percent"`
	MaxPercent float64                              `json:"max_percent"`
	MinPercent float64                              `json:"min_percent"`
}

type ReportUseCase interface {
	CancellationRates(ctx context.Context) (*CancellationReport, error)
	RevenueByPlane(ctx context.Context) ([]repository.PlaneRevenue, error)
	AircraftActivity(ctx context.Context) ([]repository.AircraftActivity, error)
}

type Service struct {
	reports repository.ReportRepository
}

func NewService(reports repository.ReportRepository) *Service {
	return &Service{reports: reports}
}

func (s *Service) CancellationRates(ctx context.Context) (*CancellationReport, error) {
	months, err := s.reports.CancellationRateByMonth(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(months), nil
}

func (s *Service) RevenueByPlane(ctx context.Context) ([]repository.PlaneRevenue, error) {
	return s.reports.RevenueByPlane(ctx)
}

func (s *Service) AircraftActivity(ctx context.Context) ([]repository.AircraftActivity, error) {
	return s.reports.AircraftMonthlyActivity(ctx)
}

func summarize(months []repository.MonthlyCancellationRate) *CancellationReport {
	report := &CancellationReport{Months: months}
	if len(months) == 0 {
		return report
	}

	report.MaxPercent = months[0].RatePercent
	report.MinPercent = months[0].RatePercent
	var total float64
	for _, month := range months {
		total += month.RatePercent
		if month.RatePercent > report.MaxPercent {
			report.MaxPercent = month.RatePercent
		}
		if month.RatePercent < report.MinPercent {
			report.MinPercent = month.RatePercent
		}
	}
	report.AvgPercent = total / float64(len(months))
	return report
}

var _ ReportUseCase = (*Service)(nil)
