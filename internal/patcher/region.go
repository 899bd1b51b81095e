package patcher

// FindRegionEnd returns the index of the line on which the delimiter depth,
// counted from lines[start], first returns to zero after having gone
// positive. Every character is counted, including those inside string
// literals and comments, so a region must not embed unbalanced delimiters.
func FindRegionEnd(lines []string, start int, openCh, closeCh rune) (int, error) {
	depth := 0
	started := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case openCh:
				depth++
				started = true
			case closeCh:
				depth--
			}
		}
		if started && depth <= 0 {
			return i, nil
		}
	}
	return -1, &MalformedRegionError{Line: start + 1, Depth: depth}
}
