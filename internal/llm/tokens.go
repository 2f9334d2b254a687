package llm

// EstimateTokens estimates the token count of a text with a Unicode-aware
// heuristic: roughly four ASCII characters per token, one token per
// non-ASCII rune (CJK, Arabic, emoji and similar scripts are conservatively
// weighted). Used whenever the backend does not report exact counts.
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight++
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}
