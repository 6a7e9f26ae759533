package formats

// ParseInts extracts unsigned integers from s without splitting or strconv.
// Integers are separated by a single non-digit character; a delimiter that
// follows another delimiter produces -1 for the missing field. The first three
// outputs default to -1. Scanning stops once ints is full. It returns the number
// of fields written.
//
//	"12/5/7" -> 12 5 7
//	"12//7"  -> 12 -1 7
//	"42"     -> 42 -1 -1
func ParseInts(s string, ints []int) int {
	return scanInts(s, ints, -1, false)
}

// ParseSignedInts is ParseInts with support for a leading '-' on each number and
// a caller-chosen marker for absent fields.
func ParseSignedInts(s string, ints []int, absent int) int {
	return scanInts(s, ints, absent, true)
}

func scanInts(s string, ints []int, absent int, signed bool) int {
	for i := 0; i < len(ints) && i < 3; i++ {
		ints[i] = absent
	}

	n := 0
	cur := 0
	inNum := false
	neg := false
	pendingNeg := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if !inNum {
				inNum = true
				cur = 0
				neg = pendingNeg
				pendingNeg = false
			}
			cur = cur*10 + int(c-'0')
		case signed && c == '-' && !inNum && !pendingNeg:
			pendingNeg = true
		default:
			if n >= len(ints) {
				return n
			}
			if inNum {
				if neg {
					cur = -cur
				}
				ints[n] = cur
				inNum = false
			} else {
				ints[n] = absent
			}
			n++
			pendingNeg = false
		}
	}

	if inNum && n < len(ints) {
		if neg {
			cur = -cur
		}
		ints[n] = cur
		n++
	}
	return n
}
