package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lifeonloan/wealth-api/models"
)

// ============================================================================
// POSTGRES BUDGET STORE
// ============================================================================

type PostgresBudgetStore struct {
	db *sql.DB
}

func NewPostgresBudgetStore(db *sql.DB) *PostgresBudgetStore {
	return &PostgresBudgetStore{db: db}
}

func (s *PostgresBudgetStore) Insert(ctx context.Context, record *models.BudgetRecord) error {
	essential, err := json.Marshal(record.Essential)
	if err != nil {
		return fmt.Errorf("failed to marshal essential expenses: %w", err)
	}
	discretionary, err := json.Marshal(record.Discretionary)
	if err != nil {
		return fmt.Errorf("failed to marshal discretionary expenses: %w", err)
	}

	query := `
		INSERT INTO budgets (id, user_id, essential, discretionary,
			total_essential, total_discretionary, total_expenses,
			advice, visualization, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.UserID, essential, discretionary,
		record.TotalEssential, record.TotalDiscretionary, record.TotalExpenses,
		record.Advice, record.Visualization, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	return nil
}

// FindRecent returns the user's records newest first. A limit of 0 means no
// limit.
func (s *PostgresBudgetStore) FindRecent(ctx context.Context, userID string, limit int) ([]models.BudgetRecord, error) {
	query := `
		SELECT id, user_id, essential, discretionary,
		       total_essential, total_discretionary, total_expenses,
		       advice, visualization, created_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $2`, userID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	records := []models.BudgetRecord{}
	for rows.Next() {
		record, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

func (s *PostgresBudgetStore) FindByID(ctx context.Context, userID, id string) (*models.BudgetRecord, error) {
	query := `
		SELECT id, user_id, essential, discretionary,
		       total_essential, total_discretionary, total_expenses,
		       advice, visualization, created_at
		FROM budgets
		WHERE id = $1 AND user_id = $2
	`

	record, err := scanBudget(s.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (*models.BudgetRecord, error) {
	var record models.BudgetRecord
	var essential, discretionary []byte

	err := row.Scan(
		&record.ID, &record.UserID, &essential, &discretionary,
		&record.TotalEssential, &record.TotalDiscretionary, &record.TotalExpenses,
		&record.Advice, &record.Visualization, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(essential, &record.Essential); err != nil {
		return nil, fmt.Errorf("failed to unmarshal essential expenses: %w", err)
	}
	if err := json.Unmarshal(discretionary, &record.Discretionary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discretionary expenses: %w", err)
	}

	return &record, nil
}
