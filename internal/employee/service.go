// Package employee maintains cached per-employee projections: how many
// sessions they handled and what they currently owe in advances. These are
// derived numbers, always rebuildable, never part of the ledger's
// consistency boundary.
package employee

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=employee
type Repository interface {
	CountHandledSessions(ctx context.Context, employee string) (int64, error)
	SumOutstandingAdvances(ctx context.Context, employee string) (int64, error)
	SaveStats(ctx context.Context, employee string, sessions, advances int64) error

	// MarkAdvanceSettled flips the advance and returns the owning employee.
	MarkAdvanceSettled(ctx context.Context, advanceID int64) (string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RefreshStats recomputes the employee's cached aggregates from scratch.
func (s *Service) RefreshStats(ctx context.Context, employee string) error {
	sessions, err := s.repo.CountHandledSessions(ctx, employee)
	if err != nil {
		return fmt.Errorf("counting sessions for %s: %w", employee, err)
	}

	advances, err := s.repo.SumOutstandingAdvances(ctx, employee)
	if err != nil {
		return fmt.Errorf("summing advances for %s: %w", employee, err)
	}

	if err := s.repo.SaveStats(ctx, employee, sessions, advances); err != nil {
		return fmt.Errorf("saving stats for %s: %w", employee, err)
	}

	return nil
}

// SettleAdvance marks an advance repaid and refreshes the owning
// employee's cached figure.
func (s *Service) SettleAdvance(ctx context.Context, advanceID int64) error {
	employee, err := s.repo.MarkAdvanceSettled(ctx, advanceID)
	if err != nil {
		return fmt.Errorf("settling advance %d: %w", advanceID, err)
	}

	return s.RefreshStats(ctx, employee)
}
