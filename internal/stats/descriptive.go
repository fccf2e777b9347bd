package stats

import moremath "github.com/aclements/go-moremath/stats"

// Quartiles returns the first quartile, median, and third quartile of xs.
// The caller's slice is not modified.
func Quartiles(xs []float64) (q1, median, q3 float64) {
	s := moremath.Sample{Xs: append([]float64(nil), xs...)}
	s.Sort()
	return s.Quantile(0.25), s.Quantile(0.5), s.Quantile(0.75)
}
