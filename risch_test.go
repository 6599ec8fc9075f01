package antideriv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanTower_Classification(t *testing.T) {
	x := S("x")

	levels, algebraic, foreign := scanTower(ExpOf(PowOf(x, N(2))), "x")
	require.Len(t, levels, 1)
	require.Equal(t, towerExp, levels[0].kind)
	require.False(t, algebraic)
	require.False(t, foreign)

	// Repeated occurrences of one monomial are a single level.
	f := AddOf(ExpOf(PowOf(x, N(2))), MulOf(x, ExpOf(PowOf(x, N(2)))))
	levels, _, _ = scanTower(f, "x")
	require.Len(t, levels, 1)

	// Fractional powers of the variable are algebraic.
	_, algebraic, _ = scanTower(PowOf(AddOf(PowOf(x, N(3)), N(1)), F(-1, 2)), "x")
	require.True(t, algebraic)

	// Trig monomials are outside the exp/log tower.
	_, _, foreign = scanTower(SinOf(x), "x")
	require.True(t, foreign)

	// Variable exponents are implicit exp levels this fragment skips.
	_, _, foreign = scanTower(PowOf(x, x), "x")
	require.True(t, foreign)
}

func TestRisch_GaussianIsNonElementary(t *testing.T) {
	x := S("x")
	res := IntegrateDetailed(ExpOf(PowOf(x, N(2))), "x")
	require.Equal(t, StatusNonElementary, res.Status)
	require.Equal(t, "integral(exp(x^2), x)", res.Antiderivative.String())

	res = IntegrateDetailed(ExpOf(PowOf(x, N(3))), "x")
	require.Equal(t, StatusNonElementary, res.Status)
}

func TestRisch_LogIntegralIsNonElementary(t *testing.T) {
	x := S("x")
	// 1/ln(x): the residue at the logarithmic pole is x, not a constant.
	res := IntegrateDetailed(PowOf(LnOf(x), N(-1)), "x")
	require.Equal(t, StatusNonElementary, res.Status)

	res = IntegrateDetailed(MulOf(x, PowOf(LnOf(x), N(-1))), "x")
	require.Equal(t, StatusNonElementary, res.Status)
}

func TestRisch_AlgebraicTowerIsUnsupported(t *testing.T) {
	x := S("x")
	f := PowOf(AddOf(PowOf(x, N(3)), N(1)), F(-1, 2))
	res := IntegrateDetailed(f, "x")
	require.Equal(t, StatusUnsupportedTower, res.Status)
	require.IsType(t, &Integral{}, res.Antiderivative)
}

func TestRisch_SolvableDifferentialEquation(t *testing.T) {
	x := S("x")
	eng := NewEngine()

	// x*e^(x^2): q' + 2x*q = x pins q = 1/2.
	f := MulOf(x, ExpOf(PowOf(x, N(2))))
	out := eng.tryRisch(request{integrand: f, varName: "x"})
	require.Equal(t, outcomeFound, out.status)
	requireDerivativeMatches(t, out.result, f, "x", -1, 0.5, 1)

	// x^3*e^(x^2) needs a quadratic q.
	f = MulOf(PowOf(x, N(3)), ExpOf(PowOf(x, N(2))))
	out = eng.tryRisch(request{integrand: f, varName: "x"})
	require.Equal(t, outcomeFound, out.status)
	requireDerivativeMatches(t, out.result, f, "x", -1, 0.5, 1)
}

func TestRisch_DegreeBoundRejectsGaussian(t *testing.T) {
	x := S("x")
	eng := NewEngine()
	out := eng.tryRisch(request{integrand: ExpOf(PowOf(x, N(2))), varName: "x"})
	require.Equal(t, outcomeNonElementary, out.status)
}

func TestRisch_LogResidueClosesConstantCase(t *testing.T) {
	x := S("x")
	eng := NewEngine()
	// 2x/((x^2+1)*ln(x^2+1)) has residue 1.
	u := AddOf(PowOf(x, N(2)), N(1))
	f := MulOf(N(2), x, PowOf(u, N(-1)), PowOf(LnOf(u), N(-1)))
	out := eng.tryRisch(request{integrand: f, varName: "x"})
	require.Equal(t, outcomeFound, out.status)
	require.Equal(t, "ln(abs(ln(x^2 + 1)))", out.result.String())
}

func TestRisch_RationalViaOstrogradsky(t *testing.T) {
	x := S("x")
	eng := NewEngine()

	// (3x^2+1)/(x^3+x+1): the numerator is exactly the derivative of the
	// irreducible cubic, which partial fractions cannot factor.
	f := ratOver(
		AddOf(MulOf(N(3), PowOf(x, N(2))), N(1)),
		AddOf(PowOf(x, N(3)), x, N(1)),
	)
	out := eng.tryRisch(request{integrand: f, varName: "x"})
	require.Equal(t, outcomeFound, out.status)
	require.Contains(t, out.result.String(), "ln(abs(")
	requireDerivativeMatches(t, out.result, f, "x", 0.5, 1, 2)

	// x/(x^2+1)^2: a purely rational antiderivative, no log part.
	f = ratOver(x, PowOf(AddOf(PowOf(x, N(2)), N(1)), N(2)))
	out = eng.tryRisch(request{integrand: f, varName: "x"})
	require.Equal(t, outcomeFound, out.status)
	requireDerivativeMatches(t, out.result, f, "x", -2, 0.5, 1, 3)
}

func TestRisch_DeclinesMixedTowers(t *testing.T) {
	x := S("x")
	eng := NewEngine()
	out := eng.tryRisch(request{
		integrand: MulOf(ExpOf(x), LnOf(x)),
		varName:   "x",
	})
	require.Equal(t, outcomeNotApplicable, out.status)
}

func TestOstrogradsky_SquarefreeDenominatorPassesThrough(t *testing.T) {
	num := mkPoly(1)       // 1
	den := mkPoly(1, 0, 1) // x^2+1
	rational, logNum, logDen, ok := ostrogradsky(num, den)
	require.True(t, ok)
	require.Nil(t, rational)
	require.Equal(t, 0, logNum.degree())
	require.Equal(t, 2, logDen.degree())
}

func TestLogDerivativeTerm(t *testing.T) {
	// 6x over squarefree x^2+1 is 3*(x^2+1)'.
	got, ok := logDerivativeTerm(mkPoly(0, 6), mkPoly(1, 0, 1), "x")
	require.True(t, ok)
	require.Equal(t, "3*ln(abs(x^2 + 1))", got.String())

	// x+1 is not a constant multiple of 2x.
	_, ok = logDerivativeTerm(mkPoly(1, 1), mkPoly(1, 0, 1), "x")
	require.False(t, ok)
}
