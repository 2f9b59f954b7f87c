package agents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/incontext-app/incontext/internal/agents"
)

func TestVendorFor(t *testing.T) {
	tests := []struct {
		model  string
		vendor string
	}{
		{"gpt-4.1-mini", agents.VendorOpenAI},
		{"gpt-4.1", agents.VendorOpenAI},
		{"claude-3-5-haiku-latest", agents.VendorAnthropic},
		{"claude-3-7-sonnet-latest", agents.VendorAnthropic},
		{"gemini-2.0-flash", agents.VendorGoogle},
		{"", agents.VendorGoogle},
		// matching is case sensitive, so cased variants fall through
		{"GPT-4.1", agents.VendorGoogle},
		{"Claude-3-5-Haiku-Latest", agents.VendorGoogle},
		// prefixes and suffixes are not partial matches
		{"gpt-4.1-turbo", agents.VendorGoogle},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			assert.Equal(t, tc.vendor, agents.VendorFor(tc.model))
		})
	}
}
