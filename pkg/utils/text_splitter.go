package utils

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with 'overlap' characters repeated at each boundary so context
// survives the cut. It slices on runes, not bytes.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// FirstChunk bounds text to a single prompt-sized chunk. Callers use it to
// keep generation inputs inside the model's context budget.
func FirstChunk(text string, chunkSize int) string {
	if text == "" {
		return ""
	}
	return SplitText(text, chunkSize, 0)[0]
}
