// Package compare computes bin-by-bin comparisons between two histograms
// sharing a binning: ratio, pull, difference, relative difference, asymmetry
// and efficiency. Each comparison produces a value and an asymmetric
// uncertainty interval per bin.
//
// Bins where a required denominator is zero produce NaN instead of an
// error: a renderer shows such bins as gaps, and one empty bin must not
// abort the comparison of all the others.
package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/histfang/pkg/hist"
	"github.com/Sumatoshi-tech/histfang/pkg/uncertainty"
)

var (
	// ErrUnknownKind is returned for an unrecognized comparison kind.
	ErrUnknownKind = errors.New("compare: unknown comparison kind")

	// ErrUnknownRatioUncertainty is returned for an unrecognized ratio
	// uncertainty policy.
	ErrUnknownRatioUncertainty = errors.New("compare: unknown ratio uncertainty policy")

	// ErrAsymmetricalUnsupported is returned when asymmetrical h1
	// uncertainties are requested for a comparison that does not support
	// them (asymmetry, efficiency).
	ErrAsymmetricalUnsupported = errors.New("compare: asymmetrical uncertainties are not supported for this comparison")

	// ErrWeightedEfficiency is returned when an efficiency is requested
	// for weighted histograms.
	ErrWeightedEfficiency = errors.New("compare: efficiency requires unweighted histograms")

	// ErrNegativeContents is returned when an efficiency is requested for
	// histograms with negative bin contents.
	ErrNegativeContents = errors.New("compare: efficiency requires non-negative bin contents")

	// ErrNotSubsample is returned when a bin of the subset histogram
	// exceeds the corresponding bin of the total histogram. The converse
	// cannot be checked from bin contents: that the subset's entries are
	// truly a subsample of the total's is a caller contract.
	ErrNotSubsample = errors.New("compare: subset bin content exceeds total bin content")
)

// Kind selects the comparison quantity.
type Kind string

const (
	// KindRatio is h1/h2.
	KindRatio Kind = "ratio"
	// KindPull is (h1-h2)/sqrt(sigma1^2+sigma2^2).
	KindPull Kind = "pull"
	// KindDifference is h1-h2.
	KindDifference Kind = "difference"
	// KindRelativeDifference is h1/h2 - 1.
	KindRelativeDifference Kind = "relative_difference"
	// KindAsymmetry is (h1-h2)/(h1+h2).
	KindAsymmetry Kind = "asymmetry"
	// KindEfficiency is h1/h2 for h1 a subsample of h2.
	KindEfficiency Kind = "efficiency"
)

// Validate returns ErrUnknownKind for kinds other than the six constants.
func (k Kind) Validate() error {
	switch k {
	case KindRatio, KindPull, KindDifference, KindRelativeDifference, KindAsymmetry, KindEfficiency:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// RatioUncertainty selects how histogram uncertainties enter a ratio-type
// comparison.
type RatioUncertainty string

const (
	// RatioSplit scales only h1's uncertainty by 1/h2 for the error bars,
	// leaving h2's relative uncertainty to be drawn as a separate band
	// (see ReferenceBand). This models "the data carries the error bars,
	// the model's uncertainty is a band behind them".
	RatioSplit RatioUncertainty = "split"

	// RatioUncorrelated combines both uncertainties in quadrature into a
	// single error bar.
	RatioUncorrelated RatioUncertainty = "uncorrelated"
)

// Validate returns ErrUnknownRatioUncertainty for unknown policies.
func (r RatioUncertainty) Validate() error {
	switch r {
	case RatioSplit, RatioUncorrelated:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRatioUncertainty, string(r))
	}
}

// Options configures a comparison. The zero value selects the split ratio
// policy and symmetrical h1 uncertainties.
type Options struct {
	// RatioUncertainty applies to KindRatio and KindRelativeDifference.
	RatioUncertainty RatioUncertainty

	// H1Uncertainty selects the bin uncertainty estimate for h1.
	H1Uncertainty uncertainty.Kind
}

func (o Options) withDefaults() Options {
	if o.RatioUncertainty == "" {
		o.RatioUncertainty = RatioSplit
	}

	if o.H1Uncertainty == "" {
		o.H1Uncertainty = uncertainty.Symmetrical
	}

	return o
}

// Result holds a comparison: one value and one asymmetric uncertainty
// interval per bin, aligned with the shared binning. NaN marks bins where
// the comparison is undefined.
type Result struct {
	Values []float64
	Lower  []float64
	Upper  []float64
}

// Compare computes the comparison of the given kind between h1 and h2.
// The histograms must share identical bin edges.
func Compare(h1, h2 *hist.Histogram, kind Kind, opts Options) (*Result, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	switch kind {
	case KindRatio:
		return Ratio(h1, h2, opts.RatioUncertainty, opts.H1Uncertainty)
	case KindRelativeDifference:
		return RelativeDifference(h1, h2, opts.RatioUncertainty, opts.H1Uncertainty)
	case KindPull:
		return Pull(h1, h2, opts.H1Uncertainty)
	case KindDifference:
		return Difference(h1, h2, opts.H1Uncertainty)
	case KindAsymmetry:
		if opts.H1Uncertainty.Asymmetric() {
			return nil, fmt.Errorf("%w: asymmetry", ErrAsymmetricalUnsupported)
		}

		return Asymmetry(h1, h2)
	case KindEfficiency:
		if opts.H1Uncertainty.Asymmetric() {
			return nil, fmt.Errorf("%w: efficiency", ErrAsymmetricalUnsupported)
		}

		return Efficiency(h1, h2)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// RatioVariances returns the per-bin variance of h1/h2 treating the two
// histograms as uncorrelated:
//
//	var(r) = var1/v2^2 + var2*v1^2/v2^4
//
// Bins with v2 == 0 are NaN.
func RatioVariances(h1, h2 *hist.Histogram) ([]float64, error) {
	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	v1 := h1.Values()
	v2 := h2.Values()
	var1 := h1.Variances()
	var2 := h2.Variances()

	out := make([]float64, len(v1))

	for i := range out {
		if v2[i] == 0 {
			out[i] = math.NaN()

			continue
		}

		out[i] = var1[i]/(v2[i]*v2[i]) + var2[i]*v1[i]*v1[i]/math.Pow(v2[i], 4)
	}

	return out, nil
}

// ratioVariance is the single-bin form of RatioVariances with an explicit
// h1 variance, used to propagate asymmetric h1 intervals side by side.
func ratioVariance(s1sq, v1, v2, var2 float64) float64 {
	return s1sq/(v2*v2) + var2*v1*v1/math.Pow(v2, 4)
}

// Ratio computes h1/h2. Bins with empty h2 are NaN. The policy decides how
// the two histograms' uncertainties enter the error bars.
func Ratio(h1, h2 *hist.Histogram, policy RatioUncertainty, h1Kind uncertainty.Kind) (*Result, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	low1, high1, err := uncertainty.Bands(h1, h1Kind)
	if err != nil {
		return nil, err
	}

	v1 := h1.Values()
	v2 := h2.Values()
	var2 := h2.Variances()

	res := &Result{
		Values: make([]float64, len(v1)),
		Lower:  make([]float64, len(v1)),
		Upper:  make([]float64, len(v1)),
	}

	for i := range v1 {
		if v2[i] == 0 {
			res.Values[i] = math.NaN()
			res.Lower[i] = math.NaN()
			res.Upper[i] = math.NaN()

			continue
		}

		res.Values[i] = v1[i] / v2[i]

		switch policy {
		case RatioUncorrelated:
			res.Lower[i] = math.Sqrt(ratioVariance(low1[i]*low1[i], v1[i], v2[i], var2[i]))
			res.Upper[i] = math.Sqrt(ratioVariance(high1[i]*high1[i], v1[i], v2[i], var2[i]))
		case RatioSplit:
			res.Lower[i] = low1[i] / v2[i]
			res.Upper[i] = high1[i] / v2[i]
		}
	}

	return res, nil
}

// ReferenceBand returns the relative uncertainty sqrt(var)/value per bin,
// NaN where the bin is empty. With the split ratio policy this is the h2
// band drawn behind the ratio points.
func ReferenceBand(h *hist.Histogram) []float64 {
	values := h.Values()
	variances := h.Variances()

	out := make([]float64, len(values))

	for i := range out {
		if values[i] == 0 {
			out[i] = math.NaN()

			continue
		}

		out[i] = math.Sqrt(variances[i]) / values[i]
	}

	return out
}

// RelativeDifference computes h1/h2 - 1 with the same uncertainty treatment
// as Ratio.
func RelativeDifference(h1, h2 *hist.Histogram, policy RatioUncertainty, h1Kind uncertainty.Kind) (*Result, error) {
	res, err := Ratio(h1, h2, policy, h1Kind)
	if err != nil {
		return nil, err
	}

	for i := range res.Values {
		res.Values[i]--
	}

	return res, nil
}

// Pull computes (h1-h2)/sqrt(sigma1^2+sigma2^2) per bin. Bins where both
// variances are zero are NaN. Pulls are unit-normalized, so the
// uncertainties are fixed at 1.
//
// With an asymmetric h1 kind the interval side facing h2 is used: the lower
// uncertainty when h1 is above h2, the upper one otherwise. When h2 carries
// no uncertainty (an exact model), the pull reduces to (h1-h2)/sigma1.
func Pull(h1, h2 *hist.Histogram, h1Kind uncertainty.Kind) (*Result, error) {
	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	low1, high1, err := uncertainty.Bands(h1, h1Kind)
	if err != nil {
		return nil, err
	}

	v1 := h1.Values()
	v2 := h2.Values()
	var1 := h1.Variances()
	var2 := h2.Variances()

	res := &Result{
		Values: make([]float64, len(v1)),
		Lower:  make([]float64, len(v1)),
		Upper:  make([]float64, len(v1)),
	}

	for i := range v1 {
		s1sq := var1[i]
		if h1Kind.Asymmetric() {
			if v1[i] >= v2[i] {
				s1sq = low1[i] * low1[i]
			} else {
				s1sq = high1[i] * high1[i]
			}
		}

		den := s1sq + var2[i]
		if den == 0 {
			res.Values[i] = math.NaN()
		} else {
			res.Values[i] = (v1[i] - v2[i]) / math.Sqrt(den)
		}

		res.Lower[i] = 1
		res.Upper[i] = 1
	}

	return res, nil
}

// Difference computes h1-h2 per bin with uncertainties added in quadrature.
func Difference(h1, h2 *hist.Histogram, h1Kind uncertainty.Kind) (*Result, error) {
	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	low1, high1, err := uncertainty.Bands(h1, h1Kind)
	if err != nil {
		return nil, err
	}

	v1 := h1.Values()
	v2 := h2.Values()
	var2 := h2.Variances()

	res := &Result{
		Values: make([]float64, len(v1)),
		Lower:  make([]float64, len(v1)),
		Upper:  make([]float64, len(v1)),
	}

	for i := range v1 {
		res.Values[i] = v1[i] - v2[i]
		res.Lower[i] = math.Sqrt(low1[i]*low1[i] + var2[i])
		res.Upper[i] = math.Sqrt(high1[i]*high1[i] + var2[i])
	}

	return res, nil
}

// Asymmetry computes (h1-h2)/(h1+h2) per bin. Bins with zero sum are NaN.
// The uncertainty is the uncorrelated ratio variance of the difference and
// sum histograms, matching the reference treatment; the correlation between
// numerator and denominator is deliberately ignored.
func Asymmetry(h1, h2 *hist.Histogram) (*Result, error) {
	if err := hist.CheckBinning(h1, h2); err != nil {
		return nil, err
	}

	sum, err := hist.Sum(h1, h2)
	if err != nil {
		return nil, err
	}

	diff, err := hist.Sum(h1, h2.Scale(-1))
	if err != nil {
		return nil, err
	}

	variances, err := RatioVariances(diff, sum)
	if err != nil {
		return nil, err
	}

	d := diff.Values()
	s := sum.Values()

	res := &Result{
		Values: make([]float64, len(d)),
		Lower:  make([]float64, len(d)),
		Upper:  make([]float64, len(d)),
	}

	for i := range d {
		if s[i] == 0 {
			res.Values[i] = math.NaN()
			res.Lower[i] = math.NaN()
			res.Upper[i] = math.NaN()

			continue
		}

		res.Values[i] = d[i] / s[i]
		res.Lower[i] = math.Sqrt(variances[i])
		res.Upper[i] = res.Lower[i]
	}

	return res, nil
}
