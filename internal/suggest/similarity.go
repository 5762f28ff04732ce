package suggest

// Similarity scores a and b between 0 (nothing shared) and 1 (equal):
// 1 - edits/longest, counted over runes.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}

	return 1.0 - float64(edits(ra, rb))/float64(longest)
}

// edits counts the rune insertions, deletions, substitutions and adjacent
// swaps turning a into b. A swap counts once, so "remvoe" is one edit from
// "remove". No substring is edited twice.
func edits(a, b []rune) int {
	d := make([][]int, len(a)+1)
	for i := range d {
		d[i] = make([]int, len(b)+1)
		d[i][0] = i
	}

	for j := range d[0] {
		d[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			sub := d[i-1][j-1]
			if a[i-1] != b[j-1] {
				sub++
			}

			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, sub)

			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}

	return d[len(a)][len(b)]
}
