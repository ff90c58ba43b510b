package skills

import "github.com/xrash/smetrics"

// ratio returns the normalized indel similarity of a and b on a 0-100 scale.
// A substitution costs 2 so the Wagner-Fischer distance equals the number
// of insertions plus deletions.
func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * (1 - float64(dist)/float64(total))
}

// partialRatio returns the best ratio of the shorter string against every
// equally long window of the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(string(short), string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best >= 100 {
				break
			}
		}
	}
	return best
}
