package pdf_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/histfang/pkg/pdf"
)

func TestGauss(t *testing.T) {
	t.Parallel()

	g := pdf.Gauss{Mu: 1, Sigma: 2}

	assert.InDelta(t, 1, g.At(1), 1e-12)
	assert.InDelta(t, g.At(-1), g.At(3), 1e-12)
	assert.Greater(t, g.At(1), g.At(0))
}

func TestExpo(t *testing.T) {
	t.Parallel()

	e := pdf.Expo{X0: 0, Tau: 2}

	assert.InDelta(t, 1, e.At(0), 1e-12)
	assert.InDelta(t, math.Exp(-1), e.At(2), 1e-12)
}

func TestCrystalBall_ContinuousAtTransition(t *testing.T) {
	t.Parallel()

	c := pdf.CrystalBall{Mu: 0, Sigma: 1, Alpha: 1.5, N: 3}

	eps := 1e-9
	atBoundary := c.At(-c.Alpha)
	justBelow := c.At(-c.Alpha - eps)

	assert.InDelta(t, atBoundary, justBelow, 1e-6)

	// Power-law tail decays slower than the Gaussian core would.
	gaussAt3 := math.Exp(-0.5 * 9)
	assert.Greater(t, c.At(-3), gaussAt3)
}

func TestNormalized_IntegratesToOne(t *testing.T) {
	t.Parallel()

	f, err := pdf.Normalized(pdf.Gauss{Mu: 0, Sigma: 1}, -5, 5)
	require.NoError(t, err)

	// Trapezoid check on a coarse independent grid.
	const steps = 10000

	var integral float64

	width := 10.0 / steps
	for i := 0; i < steps; i++ {
		x := -5 + (float64(i)+0.5)*width
		integral += f(x) * width
	}

	assert.InDelta(t, 1, integral, 1e-3)
}

func TestNormalized_InvalidRange(t *testing.T) {
	t.Parallel()

	_, err := pdf.Normalized(pdf.Gauss{Mu: 0, Sigma: 1}, 2, 2)
	require.ErrorIs(t, err, pdf.ErrInvalidRange)
}

func TestNormalized_ZeroMass(t *testing.T) {
	t.Parallel()

	_, err := pdf.Normalized(pdf.Func(func(float64) float64 { return 0 }), 0, 1)
	require.ErrorIs(t, err, pdf.ErrZeroMass)
}

func TestSampler_StaysInRange(t *testing.T) {
	t.Parallel()

	s, err := pdf.NewSampler(pdf.Gauss{Mu: 0, Sigma: 1}, -3, 3, 1)
	require.NoError(t, err)

	for _, x := range s.DrawN(1000) {
		assert.GreaterOrEqual(t, x, -3.0)
		assert.LessOrEqual(t, x, 3.0)
	}
}

func TestSampler_SeedReproducible(t *testing.T) {
	t.Parallel()

	a, err := pdf.NewSampler(pdf.Expo{X0: 0, Tau: 1}, 0, 5, 7)
	require.NoError(t, err)

	b, err := pdf.NewSampler(pdf.Expo{X0: 0, Tau: 1}, 0, 5, 7)
	require.NoError(t, err)

	assert.Equal(t, a.DrawN(100), b.DrawN(100))
}

func TestSampler_FollowsShape(t *testing.T) {
	t.Parallel()

	s, err := pdf.NewSampler(pdf.Gauss{Mu: 0, Sigma: 1}, -4, 4, 3)
	require.NoError(t, err)

	var center int

	draws := s.DrawN(20000)
	for _, x := range draws {
		if math.Abs(x) < 1 {
			center++
		}
	}

	// ~68% of a unit Gaussian lies within one sigma.
	frac := float64(center) / float64(len(draws))
	assert.InDelta(t, 0.6827, frac, 0.02)
}
