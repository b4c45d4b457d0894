package memory

// editDistance is the rune-level Levenshtein distance between a and b.
// With transpositions it is the optimal string alignment distance, where
// swapping two adjacent runes costs one edit. Rows beyond maxEdits are
// abandoned early; the result is then maxEdits+1.
func editDistance(a, b string, transpositions bool, maxEdits int) int {
	ra, rb := []rune(a), []rune(b)
	if d := len(ra) - len(rb); d > maxEdits || -d > maxEdits {
		return maxEdits + 1
	}

	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if transpositions && i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > maxEdits {
			return maxEdits + 1
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}
