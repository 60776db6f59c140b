package usecase

import (
	"context"
	"errors"
	"strings"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/pkg/util"
)

// ErrInvalidInvestment is returned when an entry reaches the service without passing form validation.
var ErrInvalidInvestment = errors.New("investment requires a name and a positive amount")

// PortfolioService owns portfolio mutations and the derived summary.
type PortfolioService struct {
	store   domrepo.PortfolioStore
	metrics domrepo.Metrics
}

func NewPortfolioService(store domrepo.PortfolioStore, metrics domrepo.Metrics) *PortfolioService {
	return &PortfolioService{store: store, metrics: metrics}
}

// Add normalizes a validated form and appends it. Nothing is stored on error.
func (s *PortfolioService) Add(ctx context.Context, req *models.AddInvestmentRequest) (models.Allocation, error) {
	entry, err := ParseInvestment(req)
	if err != nil {
		return models.Allocation{}, err
	}
	snap := s.store.Add(entry)
	s.metrics.RecordInvestmentAdded()
	return s.publish(snap), nil
}

// Clear removes every entry.
func (s *PortfolioService) Clear(ctx context.Context) models.Allocation {
	return s.publish(s.store.Clear())
}

// Summary returns the current allocation.
func (s *PortfolioService) Summary(ctx context.Context) models.Allocation {
	return Summarize(s.store.Snapshot())
}

// Snapshot returns the current entries.
func (s *PortfolioService) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

func (s *PortfolioService) publish(snap models.Snapshot) models.Allocation {
	a := Summarize(snap)
	s.metrics.RecordPortfolio(a.Total, a.Count, a.Average)
	return a
}

// ParseInvestment trims the name and parses the amount of a form.
func ParseInvestment(req *models.AddInvestmentRequest) (models.Investment, error) {
	if req == nil {
		return models.Investment{}, ErrInvalidInvestment
	}
	name := strings.TrimSpace(req.Name)
	amount, ok := util.ParseFiniteFloat(string(req.Amount))
	if name == "" || !ok || amount <= 0 {
		return models.Investment{}, ErrInvalidInvestment
	}
	return models.Investment{Name: name, Amount: amount}, nil
}
