package compare

import (
	"math"

	"github.com/Sumatoshi-tech/histfang/pkg/hist"
)

// Efficiency computes the ratio h1/h2 for the case where the entries of h1
// are a subsample of the entries of h2 (a binomial efficiency). The
// covariance between numerator and denominator makes the variance smaller
// than the uncorrelated ratio variance; with k = h1 and n = h2 per bin it
// is the posterior variance of a binomial proportion under a flat prior:
//
//	var(eff) = (k+1)(k+2)/((n+2)(n+3)) - (k+1)^2/(n+2)^2
//
// which stays bounded as the efficiency approaches 0 or 1. For very small
// n the matching interval can spill slightly outside [0, 1]; it is not
// clamped.
//
// Both histograms must be unweighted with non-negative contents, and every
// bin of h1 must not exceed the corresponding bin of h2. That the entries
// themselves are a subsample cannot be verified from bin contents and
// remains a caller contract. Bins with n == 0 are NaN.
func Efficiency(h1, h2 *hist.Histogram) (*Result, error) {
	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	if h1.Weighting() == hist.Weighted || h2.Weighting() == hist.Weighted {
		return nil, ErrWeightedEfficiency
	}

	k := h1.Values()
	n := h2.Values()

	for i := range k {
		if k[i] < 0 || n[i] < 0 {
			return nil, ErrNegativeContents
		}

		if k[i] > n[i] {
			return nil, ErrNotSubsample
		}
	}

	res := &Result{
		Values: make([]float64, len(k)),
		Lower:  make([]float64, len(k)),
		Upper:  make([]float64, len(k)),
	}

	for i := range k {
		if n[i] == 0 {
			res.Values[i] = math.NaN()
		} else {
			res.Values[i] = k[i] / n[i]
		}

		variance := (k[i]+1)*(k[i]+2)/((n[i]+2)*(n[i]+3)) -
			(k[i]+1)*(k[i]+1)/((n[i]+2)*(n[i]+2))

		res.Lower[i] = math.Sqrt(variance)
		res.Upper[i] = res.Lower[i]
	}

	return res, nil
}
