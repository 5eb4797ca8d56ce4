package cluster

// RiverBuckets quantizes showdown equity (already on [0,1]) into n buckets:
// no clustering at river, each isomorphism's bucket is its quantized equity.
// Buckets are equal-width partitions of [0,1].
func RiverBuckets(equity []float64, n int) []int {
	out := make([]int, len(equity))
	for i, e := range equity {
		b := int(e * float64(n))
		if b >= n {
			b = n - 1
		}
		if b < 0 {
			b = 0
		}
		out[i] = b
	}
	return out
}
