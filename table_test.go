package antideriv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable_PowerRule(t *testing.T) {
	x := S("x")
	require.Equal(t, "1/4*x^4", Integrate(PowOf(x, N(3)), "x").String())
	require.Equal(t, "1/2*x^2", Integrate(x, "x").String())
	// Negative and fractional exponents ride the same rule.
	requireClosedForm(t, PowOf(x, N(-2)), "x", 0.5, 1, 2)
	requireClosedForm(t, PowOf(x, F(1, 2)), "x", 0.5, 1, 4)
	// Linear inner argument: (2x+1)^3.
	requireClosedForm(t, PowOf(AddOf(MulOf(N(2), x), N(1)), N(3)), "x", -1, 0.5, 1)
}

func TestTable_Reciprocal(t *testing.T) {
	x := S("x")
	require.Equal(t, "ln(abs(x))", Integrate(PowOf(x, N(-1)), "x").String())
	// 1/(3x+2), negative inputs included via abs.
	f := PowOf(AddOf(MulOf(N(3), x), N(2)), N(-1))
	requireClosedForm(t, f, "x", -2, 0.5, 1)
}

func TestTable_ExponentialForms(t *testing.T) {
	x := S("x")
	require.Equal(t, "exp(x)", Integrate(ExpOf(x), "x").String())
	requireClosedForm(t, ExpOf(MulOf(N(3), x)), "x", -1, 0.2, 1)
	// c^x with c > 0.
	requireClosedForm(t, PowOf(N(2), x), "x", -1, 0.5, 2)
}

func TestTable_TrigForms(t *testing.T) {
	x := S("x")
	require.Equal(t, "-1*cos(x)", Integrate(SinOf(x), "x").String())
	require.Equal(t, "sin(x)", Integrate(CosOf(x), "x").String())
	requireClosedForm(t, TanOf(x), "x", 0.3, 1, -0.5)
	requireClosedForm(t, SinOf(AddOf(MulOf(N(2), x), N(1))), "x", -1, 0.5, 2)
	// sec^2 and friends in sin/cos form.
	requireClosedForm(t, PowOf(CosOf(x), N(-2)), "x", 0.3, 1)
	requireClosedForm(t, PowOf(SinOf(x), N(-2)), "x", 0.4, 1.2)
	requireClosedForm(t, MulOf(SinOf(x), PowOf(CosOf(x), N(-2))), "x", 0.3, 1)
	requireClosedForm(t, MulOf(SinOf(x), CosOf(x)), "x", 0.3, 1, 2)
	requireClosedForm(t, PowOf(SinOf(x), N(2)), "x", 0.3, 1, 2)
	requireClosedForm(t, PowOf(TanOf(x), N(2)), "x", 0.3, 1)
}

func TestTable_LogForms(t *testing.T) {
	x := S("x")
	requireClosedForm(t, LnOf(x), "x", 0.5, 1, 3)
	requireClosedForm(t, MulOf(LnOf(x), PowOf(x, N(-1))), "x", 0.5, 2, 5)
	requireClosedForm(t, MulOf(x, LnOf(x)), "x", 0.5, 1, 3)
}

func TestTable_MixedProducts(t *testing.T) {
	x := S("x")
	requireClosedForm(t, MulOf(x, ExpOf(x)), "x", -1, 0.5, 1)
	requireClosedForm(t, MulOf(x, SinOf(MulOf(N(2), x))), "x", 0.3, 1, 2)
	requireClosedForm(t, MulOf(x, CosOf(x)), "x", 0.3, 1, 2)
}

func TestTable_Hyperbolic(t *testing.T) {
	x := S("x")
	require.Equal(t, "cosh(x)", Integrate(SinhOf(x), "x").String())
	require.Equal(t, "sinh(x)", Integrate(CoshOf(x), "x").String())
	requireClosedForm(t, TanhOf(MulOf(N(2), x)), "x", -1, 0.5, 1)
}

func TestTable_InverseTrig(t *testing.T) {
	x := S("x")
	requireClosedForm(t, AsinOf(x), "x", -0.5, 0.2, 0.8)
	requireClosedForm(t, AcosOf(x), "x", -0.5, 0.2, 0.8)
	requireClosedForm(t, AtanOf(x), "x", -2, 0.5, 3)
}

func TestTable_AbsAndQuadratics(t *testing.T) {
	x := S("x")
	requireClosedForm(t, AbsOf(x), "x", -2, 0.5, 3)
	// 1/(x^2+4) -> arctangent.
	requireClosedForm(t, PowOf(AddOf(PowOf(x, N(2)), N(4)), N(-1)), "x", -2, 0.5, 3)
	// 1/sqrt(9-x^2) -> arcsine.
	f := PowOf(AddOf(N(9), MulOf(N(-1), PowOf(x, N(2)))), F(-1, 2))
	requireClosedForm(t, f, "x", -2, 0.5, 2)
	// 1/sqrt(x^2+1) -> inverse hyperbolic form.
	requireClosedForm(t, PowOf(AddOf(PowOf(x, N(2)), N(1)), F(-1, 2)), "x", -2, 0.5, 3)
}

func TestTable_MatchLinear(t *testing.T) {
	x := S("x")
	a, b, ok := matchLinear(x, "x")
	require.True(t, ok)
	require.Equal(t, "1", a.String())
	require.Equal(t, "0", b.String())

	a, b, ok = matchLinear(AddOf(MulOf(N(3), x), N(2)), "x")
	require.True(t, ok)
	require.Equal(t, "3", a.String())
	require.Equal(t, "2", b.String())

	// A symbolic slope is fine as long as it is free of the variable.
	a, _, ok = matchLinear(MulOf(S("k"), x), "x")
	require.True(t, ok)
	require.Equal(t, "k", a.String())

	// Quadratic arguments are not linear.
	_, _, ok = matchLinear(PowOf(x, N(2)), "x")
	require.False(t, ok)
	// Expressions free of the variable are not linear in it.
	_, _, ok = matchLinear(S("y"), "x")
	require.False(t, ok)
}
