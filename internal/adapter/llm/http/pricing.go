package http

import (
	"strings"

	"github.com/bkyoung/diffscope/internal/domain"
)

// ModelPricing contains per-million-token rates for one model in USD.
// Cache writes are billed at a premium over plain input; cache reads at
// a steep discount.
type ModelPricing struct {
	InputPer1M      float64
	OutputPer1M     float64
	CacheWritePer1M float64
	CacheReadPer1M  float64
}

// Pricing calculates API cost from token usage.
type Pricing interface {
	Cost(model string, usage domain.UsageStats) float64
}

// DefaultPricing holds the builtin Anthropic rate table.
type DefaultPricing struct {
	prices map[string]ModelPricing
}

// NewDefaultPricing creates a pricing calculator with current rates.
func NewDefaultPricing() *DefaultPricing {
	return &DefaultPricing{prices: buildPricingTable()}
}

// Cost returns the USD cost of one call. Unknown models cost zero so a
// new model name never breaks a run; callers that care can check
// Known first.
func (p *DefaultPricing) Cost(model string, usage domain.UsageStats) float64 {
	mp, ok := p.lookup(model)
	if !ok {
		return 0.0
	}

	cost := float64(usage.InputTokens) / 1_000_000.0 * mp.InputPer1M
	cost += float64(usage.OutputTokens) / 1_000_000.0 * mp.OutputPer1M
	cost += float64(usage.CacheCreationTokens) / 1_000_000.0 * mp.CacheWritePer1M
	cost += float64(usage.CacheReadTokens) / 1_000_000.0 * mp.CacheReadPer1M
	return cost
}

// Known reports whether the model has a pricing entry.
func (p *DefaultPricing) Known(model string) bool {
	_, ok := p.lookup(model)
	return ok
}

// lookup resolves a model name, falling back to prefix matching so
// dated variants ("claude-sonnet-4-5-20250929") resolve to their family
// entry.
func (p *DefaultPricing) lookup(model string) (ModelPricing, bool) {
	if mp, ok := p.prices[model]; ok {
		return mp, true
	}
	for name, mp := range p.prices {
		if strings.HasPrefix(model, name) {
			return mp, true
		}
	}
	return ModelPricing{}, false
}

// buildPricingTable returns the Anthropic rate table.
// Pricing as of 2025-12: https://claude.com/pricing
// Cache write = 1.25x input, cache read = 0.1x input.
func buildPricingTable() map[string]ModelPricing {
	return map[string]ModelPricing{
		"claude-opus-4-5": {
			InputPer1M:      5.00,
			OutputPer1M:     25.00,
			CacheWritePer1M: 6.25,
			CacheReadPer1M:  0.50,
		},
		"claude-sonnet-4-5": {
			InputPer1M:      3.00,
			OutputPer1M:     15.00,
			CacheWritePer1M: 3.75,
			CacheReadPer1M:  0.30,
		},
		"claude-haiku-4-5": {
			InputPer1M:      1.00,
			OutputPer1M:     5.00,
			CacheWritePer1M: 1.25,
			CacheReadPer1M:  0.10,
		},
		"claude-3-5-sonnet": {
			InputPer1M:      3.00,
			OutputPer1M:     15.00,
			CacheWritePer1M: 3.75,
			CacheReadPer1M:  0.30,
		},
		"claude-3-5-haiku": {
			InputPer1M:      0.80,
			OutputPer1M:     4.00,
			CacheWritePer1M: 1.00,
			CacheReadPer1M:  0.08,
		},
	}
}
