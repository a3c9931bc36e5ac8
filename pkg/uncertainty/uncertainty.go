// Package uncertainty estimates per-bin uncertainty intervals for histogram
// contents. Two families are supported: the symmetric standard deviation
// derived from the stored bin variance, and asymmetric frequentist Poisson
// confidence intervals for unweighted histograms.
//
// The asymmetric interval is the Garwood construction at the one-sigma
// confidence level, computed through the identity between Poisson tail sums
// and gamma quantiles:
//
//	low  = n − Q(α/2, n)
//	high = Q(1−α/2, n+1) − n
//
// where Q(p, a) is the quantile of the Gamma(a, 1) distribution and
// α = 1 − 0.682689492. The bin content of a weighted histogram does not
// follow a Poisson distribution, so asymmetric intervals are refused for
// weighted histograms.
package uncertainty

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/Sumatoshi-tech/histfang/pkg/hist"
)

var (
	// ErrWeightedHistogram is returned when an asymmetrical interval is
	// requested for a weighted histogram.
	ErrWeightedHistogram = errors.New("uncertainty: asymmetrical uncertainties require an unweighted histogram")

	// ErrUnknownKind is returned for an unrecognized uncertainty kind.
	ErrUnknownKind = errors.New("uncertainty: unknown uncertainty kind")
)

// ConfidenceLevel is the coverage of the Poisson intervals (one sigma).
const ConfidenceLevel = 0.682689492

// Kind selects how a bin uncertainty is estimated.
type Kind string

const (
	// Symmetrical uses sqrt(variance) on both sides. Valid for weighted
	// and unweighted histograms.
	Symmetrical Kind = "symmetrical"

	// Asymmetrical uses the Garwood Poisson interval. Bins with zero
	// content get a one-sided upper bound (lower uncertainty 0).
	Asymmetrical Kind = "asymmetrical"

	// AsymmetricalDoubleSidedZeros uses the Garwood Poisson interval with
	// zero bins treated by the same two-sided formula as every other bin.
	AsymmetricalDoubleSidedZeros Kind = "asymmetrical_double_sided_zeros"
)

// Validate returns ErrUnknownKind for kinds other than the three constants.
func (k Kind) Validate() error {
	switch k {
	case Symmetrical, Asymmetrical, AsymmetricalDoubleSidedZeros:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// Asymmetric reports whether the kind produces Poisson intervals.
func (k Kind) Asymmetric() bool {
	return k == Asymmetrical || k == AsymmetricalDoubleSidedZeros
}

// PoissonInterval returns the lower and upper uncertainties of the Garwood
// interval around an observed count n. With doubleSidedZeros false a zero
// count gets the one-sided upper bound at ConfidenceLevel; with it true the
// general two-sided formula is applied unchanged.
//
// A negative or NaN count yields (NaN, NaN).
func PoissonInterval(n float64, doubleSidedZeros bool) (low, high float64) {
	if math.IsNaN(n) || n < 0 {
		return math.NaN(), math.NaN()
	}

	alpha := 1 - ConfidenceLevel

	if n == 0 {
		if !doubleSidedZeros {
			return 0, mathext.GammaIncRegInv(1, ConfidenceLevel)
		}

		return 0, mathext.GammaIncRegInv(1, 1-alpha/2)
	}

	low = n - mathext.GammaIncRegInv(n, alpha/2)
	high = mathext.GammaIncRegInv(n+1, 1-alpha/2) - n

	return low, high
}

// Estimate returns the lower and upper uncertainty of a single bin with the
// given content and variance. For the asymmetrical kinds the weighting must
// be hist.Unweighted.
func Estimate(value, variance float64, kind Kind, weighting hist.Weighting) (low, high float64, err error) {
	if err := kind.Validate(); err != nil {
		return 0, 0, err
	}

	if kind == Symmetrical {
		s := math.Sqrt(variance)

		return s, s, nil
	}

	if weighting == hist.Weighted {
		return 0, 0, ErrWeightedHistogram
	}

	low, high = PoissonInterval(value, kind == AsymmetricalDoubleSidedZeros)

	return low, high, nil
}

// Bands returns the per-bin lower and upper uncertainties for a histogram.
func Bands(h *hist.Histogram, kind Kind) (low, high []float64, err error) {
	if err := kind.Validate(); err != nil {
		return nil, nil, err
	}

	if kind.Asymmetric() && h.Weighting() == hist.Weighted {
		return nil, nil, ErrWeightedHistogram
	}

	values := h.Values()
	variances := h.Variances()

	low = make([]float64, len(values))
	high = make([]float64, len(values))

	for i := range values {
		if kind == Symmetrical {
			s := math.Sqrt(variances[i])
			low[i], high[i] = s, s

			continue
		}

		low[i], high[i] = PoissonInterval(values[i], kind == AsymmetricalDoubleSidedZeros)
	}

	return low, high, nil
}
