package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lifeonloan/wealth-api/models"
)

// ============================================================================
// EXPENSE AGGREGATOR
// ============================================================================
// Pure computation: raw form values in, normalized input and totals out.
// Amount math runs on decimals so percentages round predictably.

// InvalidAmountError reports every category whose submitted value could not
// be accepted, with a reason per field.
type InvalidAmountError struct {
	Reasons map[string]string
}

func (e *InvalidAmountError) Error() string {
	fields := make([]string, 0, len(e.Reasons))
	for category := range e.Reasons {
		fields = append(fields, category)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid amount for: %s", strings.Join(fields, ", "))
}

type Aggregator struct {
	// CoerceInvalid restores the legacy behavior of treating unparseable
	// values as 0 instead of rejecting the submission.
	CoerceInvalid bool
}

func NewAggregator(coerceInvalid bool) *Aggregator {
	return &Aggregator{CoerceInvalid: coerceInvalid}
}

// Aggregate normalizes one raw submission. Absent or blank fields count as
// 0; present values must parse as non-negative decimals unless
// CoerceInvalid is set. Returns the full ExpenseInput (every category key
// present) and the derived totals.
func (a *Aggregator) Aggregate(raw map[string]string) (models.ExpenseInput, models.BudgetTotals, error) {
	input := models.ExpenseInput{
		Essential:     make(map[string]float64, len(models.EssentialCategories)),
		Discretionary: make(map[string]float64, len(models.DiscretionaryCategories)),
	}
	reasons := make(map[string]string)

	essential := decimal.Zero
	for _, category := range models.EssentialCategories {
		amount, reason := a.parseAmount(raw[category])
		if reason != "" {
			reasons[category] = reason
			continue
		}
		input.Essential[category], _ = amount.Float64()
		essential = essential.Add(amount)
	}

	discretionary := decimal.Zero
	for _, category := range models.DiscretionaryCategories {
		amount, reason := a.parseAmount(raw[category])
		if reason != "" {
			reasons[category] = reason
			continue
		}
		input.Discretionary[category], _ = amount.Float64()
		discretionary = discretionary.Add(amount)
	}

	if len(reasons) > 0 {
		return models.ExpenseInput{}, models.BudgetTotals{}, &InvalidAmountError{Reasons: reasons}
	}

	totals := models.BudgetTotals{}
	totals.Essential, _ = essential.Float64()
	totals.Discretionary, _ = discretionary.Float64()
	totals.Grand = totals.Essential + totals.Discretionary

	return input, totals, nil
}

func (a *Aggregator) parseAmount(value string) (decimal.Decimal, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, ""
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		if a.CoerceInvalid {
			return decimal.Zero, ""
		}
		return decimal.Zero, "not a valid number"
	}
	if amount.IsNegative() {
		if a.CoerceInvalid {
			return decimal.Zero, ""
		}
		return decimal.Zero, "amount must not be negative"
	}

	return amount, ""
}

// Percentages returns the essential and discretionary shares of the grand
// total, rounded half-up to two decimals. Both are 0 when nothing was
// spent; there is no division in that case.
func Percentages(totals models.BudgetTotals) (float64, float64) {
	if totals.Grand == 0 {
		return 0, 0
	}

	grand := decimal.NewFromFloat(totals.Grand)
	hundred := decimal.NewFromInt(100)

	essential, _ := decimal.NewFromFloat(totals.Essential).Mul(hundred).DivRound(grand, 2).Float64()
	discretionary, _ := decimal.NewFromFloat(totals.Discretionary).Mul(hundred).DivRound(grand, 2).Float64()

	return essential, discretionary
}
