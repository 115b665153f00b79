package pipeline

// SplitChunks cuts text into fixed-size windows of at most maxChars runes,
// left to right, with no overlap. Boundaries fall between runes, never inside
// one, but are not word or token aware; concatenating the chunks in order
// reproduces text exactly. Empty text yields no chunks.
func SplitChunks(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars < 1 {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
