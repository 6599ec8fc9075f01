package antideriv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ratOver(num, den Expr) Expr { return MulOf(num, PowOf(den, N(-1))) }

func TestRational_DistinctLinearRoots(t *testing.T) {
	x := S("x")
	// 1/(x^2-1) = 1/2 ln|x-1| - 1/2 ln|x+1|.
	f := PowOf(AddOf(PowOf(x, N(2)), N(-1)), N(-1))
	got := requireClosedForm(t, f, "x", 2, 3, 0.5, -0.5)
	require.Contains(t, got.String(), "ln")
}

func TestRational_PolynomialPart(t *testing.T) {
	x := S("x")
	// (x^3+1)/(x-2): division leaves a proper remainder.
	f := ratOver(AddOf(PowOf(x, N(3)), N(1)), AddOf(x, N(-2)))
	requireClosedForm(t, f, "x", 3, 4, 0.5, -1)
}

func TestRational_RepeatedLinearRoot(t *testing.T) {
	x := S("x")
	// 1/(x-1)^2 = -(x-1)^-1.
	f := PowOf(AddOf(x, N(-1)), N(-2))
	requireClosedForm(t, f, "x", 2, 3, 0.5)

	// x/(x-1)^2 mixes a log and a simple pole.
	f = ratOver(x, PowOf(AddOf(x, N(-1)), N(2)))
	requireClosedForm(t, f, "x", 2, 3, 0.5)
}

func TestRational_IrreducibleQuadratic(t *testing.T) {
	x := S("x")
	// x/(x^2+2x+5): log of the quadratic plus an arctangent.
	f := ratOver(x, AddOf(PowOf(x, N(2)), MulOf(N(2), x), N(5)))
	requireClosedForm(t, f, "x", -2, 0.5, 1, 3)
}

func TestRational_RepeatedQuadratic(t *testing.T) {
	x := S("x")
	// 1/(x^2+1)^2 needs the arctangent reduction formula.
	f := PowOf(AddOf(PowOf(x, N(2)), N(1)), N(-2))
	requireClosedForm(t, f, "x", -2, 0.5, 1, 3)
}

func TestRational_MixedFactors(t *testing.T) {
	x := S("x")
	// (3x+1)/(x(x^2+1)): linear root plus irreducible quadratic.
	f := ratOver(
		AddOf(MulOf(N(3), x), N(1)),
		MulOf(x, AddOf(PowOf(x, N(2)), N(1))),
	)
	requireClosedForm(t, f, "x", 0.5, 1, 2, -1)
}

func TestRational_CancelsCommonFactors(t *testing.T) {
	x := S("x")
	// (x-1)/(x^2-1) is really 1/(x+1); repeated-root bookkeeping must
	// not be fooled by the removable factor.
	f := ratOver(AddOf(x, N(-1)), AddOf(PowOf(x, N(2)), N(-1)))
	got := requireClosedForm(t, f, "x", 2, 3, 0.5)
	require.Equal(t, "ln(abs(x + 1))", got.String())
}

func TestRational_DeclinesIrreducibleCubic(t *testing.T) {
	x := S("x")
	// x/(x^3+x+1): the denominator has no rational roots and no
	// quadratic split, so the partial-fraction layer declines.
	num, den, ok := ratFuncFromExpr(
		ratOver(x, AddOf(PowOf(x, N(3)), x, N(1))), "x")
	require.True(t, ok)
	require.Equal(t, 1, num.degree())
	require.Equal(t, 3, den.degree())

	eng := NewEngine()
	out := eng.tryRational(request{
		integrand: ratOver(x, AddOf(PowOf(x, N(3)), x, N(1))),
		varName:   "x",
	})
	require.Equal(t, outcomeNotApplicable, out.status)
}

func TestRational_RatFuncFromExpr(t *testing.T) {
	x := S("x")
	// Plain polynomials have denominator 1.
	_, den, ok := ratFuncFromExpr(AddOf(PowOf(x, N(2)), N(1)), "x")
	require.True(t, ok)
	require.Equal(t, 0, den.degree())

	// Non-rational pieces fail the match.
	_, _, ok = ratFuncFromExpr(ratOver(SinOf(x), x), "x")
	require.False(t, ok)
	_, _, ok = ratFuncFromExpr(PowOf(x, F(1, 2)), "x")
	require.False(t, ok)
}
