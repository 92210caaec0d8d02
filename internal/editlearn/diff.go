package editlearn

import "strings"

// Diff computes the changed spans between generated and edited text using a
// word-level longest-common-subsequence alignment. Adjacent changed words
// merge into a single span. Proposal texts are short (a few hundred words)
// so the quadratic table is fine.
func Diff(generated, edited string) []ChangeSpan {
	a := strings.Fields(generated)
	b := strings.Fields(edited)

	lcs := lcsTable(a, b)

	var spans []ChangeSpan
	var removed, added []string

	flush := func() {
		if len(removed) == 0 && len(added) == 0 {
			return
		}
		spans = append(spans, ChangeSpan{
			Removed: strings.Join(removed, " "),
			Added:   strings.Join(added, " "),
		})
		removed, added = nil, nil
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			flush()
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			removed = append(removed, a[i])
			i++
		default:
			added = append(added, b[j])
			j++
		}
	}
	for ; i < len(a); i++ {
		removed = append(removed, a[i])
	}
	for ; j < len(b); j++ {
		added = append(added, b[j])
	}
	flush()

	return spans
}

func lcsTable(a, b []string) [][]int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}

	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	return table
}
