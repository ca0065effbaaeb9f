package layout

import "golang.org/x/exp/constraints"

// LargestFit binary-searches [lo, hi] for the largest value accepted by fits.
// fits must be monotonic: if it accepts k it accepts every value in [lo, k].
// The boolean is false when no value in the range is accepted.
//
// Runs fits O(log(hi-lo)) times.
func LargestFit[T constraints.Integer](lo, hi T, fits func(T) bool) (T, bool) {
	var best T
	found := false
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if fits(mid) {
			best, found = mid, true
			lo = mid + 1
			continue
		}
		if mid == lo {
			// nothing smaller left; also keeps unsigned T from wrapping
			break
		}
		hi = mid - 1
	}
	return best, found
}
