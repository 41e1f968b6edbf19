package canary

// Usage tracks token consumption for a single assistant message.
// Providers normalize their API-specific fields to these totals.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}
