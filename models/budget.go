package models

import "time"

// ============================================================================
// BUDGET CATEGORIES
// ============================================================================
// The category keys double as form field names and as map keys in the stored
// record, so order and spelling are load-bearing.

var EssentialCategories = []string{
	"tuition",
	"housing",
	"food",
	"transportation",
	"textbooks",
}

var DiscretionaryCategories = []string{
	"clothing",
	"personal_care",
	"entertainment",
	"electronics",
	"travel",
	"hobbies",
	"coffee_snacks",
}

// ExpenseInput holds the normalized amount for every category key.
// Missing form fields default to 0, so both maps always carry the full set.
type ExpenseInput struct {
	Essential     map[string]float64 `json:"essential"`
	Discretionary map[string]float64 `json:"discretionary"`
}

// BudgetTotals is derived once by the aggregator and never mutated.
type BudgetTotals struct {
	Essential     float64 `json:"total_essential"`
	Discretionary float64 `json:"total_discretionary"`
	Grand         float64 `json:"total_expenses"`
}

// BudgetRecord is the persisted unit: one submission with its totals,
// visualization and advice. Immutable after creation; there is no update or
// delete path.
type BudgetRecord struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	CreatedAt          time.Time          `json:"created_at"`
	Essential          map[string]float64 `json:"essential"`
	Discretionary      map[string]float64 `json:"discretionary"`
	TotalEssential     float64            `json:"total_essential"`
	TotalDiscretionary float64            `json:"total_discretionary"`
	TotalExpenses      float64            `json:"total_expenses"`
	Advice             string             `json:"advice"`
	Visualization      string             `json:"visualization"`
}

// BudgetResponse is what the presentation layer receives: the record plus
// the computed shares for display.
type BudgetResponse struct {
	BudgetRecord
	EssentialPercentage     float64 `json:"essential_percentage"`
	DiscretionaryPercentage float64 `json:"discretionary_percentage"`
}
