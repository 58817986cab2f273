package sieve

import "math"

// IsPrime decides primality of k by trial division over 2..⌊√k⌋.
// Rounds only reach ⌊√N⌋, so this stays cheap.
func IsPrime(k int) bool {
	if k < 2 {
		return false
	}
	for d := 2; d <= k/d; d++ {
		if k%d == 0 {
			return false
		}
	}
	return true
}

// LastRound returns ⌊√n⌋, the largest k that needs a sieving round.
// The float estimate is corrected in integers.
func LastRound(n int) int {
	if n < 1 {
		return 0
	}
	r := int(math.Sqrt(float64(n)))
	for r > 0 && r > n/r {
		r--
	}
	for r+1 <= n/(r+1) {
		r++
	}
	return r
}
