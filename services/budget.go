package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifeonloan/wealth-api/models"
)

// ErrNotFound is returned when a budget does not exist or belongs to
// another user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("budget not found")

// BudgetStore is the persistence port the service depends on. Records are
// insert-only; reads are always scoped to the owning user and ordered
// newest first.
type BudgetStore interface {
	Insert(ctx context.Context, record *models.BudgetRecord) error
	FindRecent(ctx context.Context, userID string, limit int) ([]models.BudgetRecord, error)
	FindByID(ctx context.Context, userID, id string) (*models.BudgetRecord, error)
}

type BudgetService struct {
	store      BudgetStore
	aggregator *Aggregator
	renderer   ChartRenderer
	advice     *AdviceClient
}

func NewBudgetService(store BudgetStore, aggregator *Aggregator, renderer ChartRenderer, advice *AdviceClient) *BudgetService {
	return &BudgetService{
		store:      store,
		aggregator: aggregator,
		renderer:   renderer,
		advice:     advice,
	}
}

// Submit runs the full analysis pipeline for one submission: aggregate the
// raw amounts, produce the visualization and the advice concurrently, then
// assemble and persist the record. The visualization and advice have no
// data dependency on each other; both must finish before assembly.
//
// Advice failures are absorbed inside the AdviceClient. A store failure is
// a hard failure: no record is returned if the write did not complete.
func (s *BudgetService) Submit(ctx context.Context, userID string, raw map[string]string) (*models.BudgetRecord, error) {
	input, totals, err := s.aggregator.Aggregate(raw)
	if err != nil {
		return nil, err
	}

	var (
		visualization string
		renderErr     error
		advice        string
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		visualization, renderErr = s.renderer.RenderAllocation(totals.Essential, totals.Discretionary)
	}()
	go func() {
		defer wg.Done()
		advice = s.advice.Advise(ctx, input, totals.Grand)
	}()
	wg.Wait()

	if renderErr != nil {
		return nil, fmt.Errorf("failed to render visualization: %w", renderErr)
	}

	record := &models.BudgetRecord{
		ID:                 uuid.New().String(),
		UserID:             userID,
		CreatedAt:          time.Now().UTC(),
		Essential:          input.Essential,
		Discretionary:      input.Discretionary,
		TotalEssential:     totals.Essential,
		TotalDiscretionary: totals.Discretionary,
		TotalExpenses:      totals.Grand,
		Advice:             advice,
		Visualization:      visualization,
	}

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store budget: %w", err)
	}

	return record, nil
}

// GetRecent returns up to limit records for the user, newest first.
func (s *BudgetService) GetRecent(ctx context.Context, userID string, limit int) ([]models.BudgetRecord, error) {
	return s.store.FindRecent(ctx, userID, limit)
}

// GetAll returns the user's full submission history, newest first.
func (s *BudgetService) GetAll(ctx context.Context, userID string) ([]models.BudgetRecord, error) {
	return s.store.FindRecent(ctx, userID, 0)
}

// GetByID returns the record only if it exists and is owned by userID;
// otherwise ErrNotFound. Ids that are not valid UUIDs cannot match any
// stored record, so they are NotFound here rather than a store error
// (Postgres rejects malformed text bound against a UUID column).
func (s *BudgetService) GetByID(ctx context.Context, userID, id string) (*models.BudgetRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.store.FindByID(ctx, userID, id)
}
