package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lifeonloan/wealth-api/models"
	"github.com/lifeonloan/wealth-api/utils"
)

// ============================================================================
// ADVICE CLIENT
// ============================================================================
// Wraps the advice service with the containment policy: a submission never
// fails because advice generation did. Every failure mode degrades to one
// of the fixed messages below.

const (
	AdviceNotConfiguredMessage = "AI advice is currently unavailable. Please check back later."
	AdviceEmptyMessage         = "Could not generate advice at this time. Please try again later."
	AdviceFailedMessage        = "AI advice service is temporarily unavailable."
)

type AdviceClient struct {
	service AdviceService
}

// NewAdviceClient builds a client around the given service. A nil service
// means no credential was configured; the client then answers with the
// fixed unavailable message and never touches the network.
func NewAdviceClient(service AdviceService) *AdviceClient {
	return &AdviceClient{service: service}
}

// Advise returns generated advice for the submission, or a fallback
// message. The returned string is never empty and the error from the
// underlying service is never propagated.
func (c *AdviceClient) Advise(ctx context.Context, input models.ExpenseInput, total float64) string {
	if c.service == nil {
		return AdviceNotConfiguredMessage
	}

	advice, err := c.service.Generate(ctx, BuildAdvicePrompt(input, total))
	if err != nil {
		utils.Warnf("advice generation failed: %v", err)
		if errors.Is(err, ErrNoCandidates) {
			return AdviceEmptyMessage
		}
		return AdviceFailedMessage
	}
	if strings.TrimSpace(advice) == "" {
		return AdviceEmptyMessage
	}

	return advice
}

// BuildAdvicePrompt renders the prompt template for one submission. Pure:
// same input always yields the same prompt (json.Marshal sorts map keys).
func BuildAdvicePrompt(input models.ExpenseInput, total float64) string {
	essential, _ := json.Marshal(input.Essential)
	discretionary, _ := json.Marshal(input.Discretionary)

	return fmt.Sprintf(`As a financial advisor, analyze this college student's budget:
Essential Expenses: %s
Discretionary Expenses: %s
Total Monthly Expenses: $%.2f

Provide specific, actionable advice to:
1. Optimize their spending
2. Suggest potential savings
3. Recommend budget allocation improvements
4. Highlight any concerning spending patterns

Keep the advice concise, practical, and tailored to a student's lifestyle.`,
		essential, discretionary, total)
}
