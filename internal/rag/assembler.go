package rag

// Assemble turns ranked candidates into the context block handed to the
// generator. It drops candidates below minSimilarity, dedups by chunk id
// (first occurrence wins since input is ranked), caps the item count, and
// caps total size in runes, truncating the last included chunk if needed.
func Assemble(candidates []RetrievedCandidate, minSimilarity float64, maxItems, maxChars int) AssembledContext {
	var out AssembledContext
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if c.Score < minSimilarity {
			continue
		}
		if seen[c.ChunkID] {
			continue
		}
		seen[c.ChunkID] = true
		if len(out.Items) >= maxItems {
			break
		}

		text := c.Payload.Text
		runes := []rune(text)
		remaining := maxChars - out.TotalChars
		if remaining <= 0 {
			break
		}
		if len(runes) > remaining {
			text = string(runes[:remaining])
		}
		if text == "" {
			continue
		}

		out.Items = append(out.Items, ContextItem{
			ChunkID:    c.ChunkID,
			Text:       text,
			Score:      c.Score,
			DocumentID: c.Payload.DocumentID,
			Filename:   c.Payload.Filename,
			PageNumber: c.Payload.PageNumber,
		})
		out.TotalChars += len([]rune(text))
	}
	return out
}
