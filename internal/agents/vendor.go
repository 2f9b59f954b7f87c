package agents

// Vendor tags classifying which backend family serves a model.
const (
	VendorOpenAI    = "openai"
	VendorAnthropic = "anthropic"
	VendorGoogle    = "google"
)

// VendorFor derives the vendor tag for a model string. Matching is exact and
// case-sensitive; unrecognized models fall through to google.
func VendorFor(model string) string {
	switch model {
	case "gpt-4.1-mini", "gpt-4.1":
		return VendorOpenAI
	case "claude-3-5-haiku-latest", "claude-3-7-sonnet-latest":
		return VendorAnthropic
	default:
		return VendorGoogle
	}
}
