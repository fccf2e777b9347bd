package stats

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Errors returned by Friedman for degenerate inputs. The engine maps each to
// a per-variable skip; none of them aborts a run.
var (
	// ErrTooFewRounds is returned when the wide matrix has fewer than two
	// evaluation-round columns. A one-column design has nothing to compare.
	ErrTooFewRounds = errors.New("friedman: need at least two evaluation rounds")

	// ErrTooFewPatients is returned when fewer than two complete-case
	// patients remain after the pivot.
	ErrTooFewPatients = errors.New("friedman: need at least two complete patients")

	// ErrNoVariance is returned when every row is fully tied, which drives
	// the tie-correction factor to zero and leaves the statistic undefined.
	ErrNoVariance = errors.New("friedman: no variability in within-patient ranks")
)

// Friedman computes the tie-corrected Friedman chi-square statistic and its
// p-value over a complete-case wide matrix (rows = patients, columns =
// evaluation rounds).
//
// Within each row the measurements are replaced by mid-ranks (ties share the
// average of the ranks they span). The statistic is
//
//	(12/(n*k*(k+1)) * sum_j R_j^2 - 3*n*(k+1)) / C
//
// where R_j is the rank sum of column j and C is the tie correction
// 1 - sum(t^3-t)/(n*(k^3-k)). The p-value is the survival probability of a
// chi-squared distribution with k-1 degrees of freedom.
func Friedman(rows [][]float64) (statistic, pValue float64, err error) {
	n := len(rows)
	if n < 2 {
		return 0, 0, ErrTooFewPatients
	}
	k := len(rows[0])
	if k < 2 {
		return 0, 0, ErrTooFewRounds
	}

	colRankSums := make([]float64, k)
	var tieTerm float64
	for _, row := range rows {
		ranks, ties := midRanks(row)
		for j, r := range ranks {
			colRankSums[j] += r
		}
		tieTerm += ties
	}

	fn, fk := float64(n), float64(k)
	correction := 1 - tieTerm/(fn*(fk*fk*fk-fk))
	if correction <= 0 {
		return 0, 0, ErrNoVariance
	}

	var ssbn float64
	for _, s := range colRankSums {
		ssbn += s * s
	}
	statistic = (12/(fn*fk*(fk+1))*ssbn - 3*fn*(fk+1)) / correction

	chi2 := distuv.ChiSquared{K: fk - 1}
	pValue = chi2.Survival(statistic)
	return statistic, pValue, nil
}

// midRanks ranks one row of measurements, assigning tied values the average
// of the ranks they would occupy. It also returns the row's contribution to
// the tie correction, sum over tie groups of t^3 - t.
func midRanks(xs []float64) (ranks []float64, tieTerm float64) {
	k := len(xs)
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

	ranks = make([]float64, k)
	for i := 0; i < k; {
		j := i
		for j+1 < k && xs[order[j+1]] == xs[order[i]] {
			j++
		}
		// Positions i..j (0-based) share the average rank.
		avg := float64(i+j)/2 + 1
		for m := i; m <= j; m++ {
			ranks[order[m]] = avg
		}
		t := float64(j - i + 1)
		tieTerm += t*t*t - t
		i = j + 1
	}
	return ranks, tieTerm
}
