package nutrition

import (
	"context"
	"fmt"
	"strings"

	chat "github.com/dprayogo/nutrisnap/internal/openrouter"
)

// promptTemplate is the fixed instruction the food listing is interpolated
// into. The reply is a table-like text block; it is rendered as-is and
// never parsed into numbers.
const promptTemplate = `Here is a list of foods and their quantities:

%s

Your task:
- Determine the standard nutritional values for **one** unit of each food (calories, protein, fat, carbohydrate).
- Multiply those values by the quantity listed.
- Show the calculation **per item** and the **overall total** at the bottom.
- Format the result as a table with these columns:
  - Food
  - Quantity
  - Calories
  - Protein (g)
  - Fat (g)
  - Carbohydrate (g)`

// BuildPrompt interpolates the food listing verbatim into the instruction
// template.
func BuildPrompt(foodListing string) string {
	return fmt.Sprintf(promptTemplate, foodListing)
}

// Estimator turns a food listing into a nutrition report.
type Estimator interface {
	Estimate(ctx context.Context, foodListing string) (string, error)
}

// OpenRouterEstimator asks an OpenRouter-hosted text model for the
// nutrition breakdown. Every call issues a fresh request; identical
// listings are estimated again rather than served from a cache.
type OpenRouterEstimator struct {
	client *chat.Client
	model  string
}

func NewOpenRouterEstimator(client *chat.Client, model string) *OpenRouterEstimator {
	return &OpenRouterEstimator{client: client, model: model}
}

func (e *OpenRouterEstimator) Estimate(ctx context.Context, foodListing string) (string, error) {
	report, err := e.client.Complete(ctx, e.model, BuildPrompt(foodListing))
	if err != nil {
		return "", fmt.Errorf("nutrition model: %w", err)
	}
	if strings.TrimSpace(report) == "" {
		return "", fmt.Errorf("nutrition model returned an empty report")
	}
	return report, nil
}
