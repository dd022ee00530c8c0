package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/diffscope/internal/domain"
)

func TestPricingCost(t *testing.T) {
	p := NewDefaultPricing()

	usage := domain.UsageStats{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.00, p.Cost("claude-sonnet-4-5", usage), 1e-9)
}

func TestPricingCacheTokens(t *testing.T) {
	p := NewDefaultPricing()

	usage := domain.UsageStats{
		CacheCreationTokens: 1_000_000,
		CacheReadTokens:     1_000_000,
	}
	// Cache write 3.75 + cache read 0.30 for the sonnet family.
	assert.InDelta(t, 4.05, p.Cost("claude-sonnet-4-5", usage), 1e-9)
}

func TestPricingDatedModelFallsBackToFamily(t *testing.T) {
	p := NewDefaultPricing()

	usage := domain.UsageStats{InputTokens: 2_000_000}
	assert.InDelta(t, 10.00, p.Cost("claude-opus-4-5-20251101", usage), 1e-9)
	assert.True(t, p.Known("claude-opus-4-5-20251101"))
}

func TestPricingUnknownModelCostsZero(t *testing.T) {
	p := NewDefaultPricing()

	usage := domain.UsageStats{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.Zero(t, p.Cost("mystery-model", usage))
	assert.False(t, p.Known("mystery-model"))
}
