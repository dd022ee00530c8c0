// Package llm provides provider-independent LLM helpers.
package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	defaultEncoder *tiktoken.Tiktoken
	encoderOnce    sync.Once
	encoderErr     error
)

// getEncoder returns the shared tiktoken encoder, initializing it
// lazily. cl100k_base is a reasonable approximation for modern models
// when budgeting prompt sizes.
func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		defaultEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return defaultEncoder, encoderErr
}

// EstimateTokens returns an estimated token count for the given text.
// Falls back to a chars/4 heuristic if the encoder cannot be loaded.
func EstimateTokens(text string) int {
	enc, err := getEncoder()
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Estimator adapts EstimateTokens to interfaces that want a value.
type Estimator struct{}

// EstimateTokens implements token estimation for prompt budgeting.
func (Estimator) EstimateTokens(text string) int {
	return EstimateTokens(text)
}
