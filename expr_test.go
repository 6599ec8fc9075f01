package antideriv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNum_ExactArithmetic(t *testing.T) {
	require.Equal(t, "3", N(3).String())
	require.Equal(t, "1/2", F(1, 2).String())
	require.Equal(t, "7/6", numAdd(F(1, 3), F(5, 6)).String())
	require.Equal(t, "-2", numNeg(N(2)).String())
	require.Equal(t, "3/2", numRecip(F(2, 3)).String())
	require.True(t, F(4, 2).IsInteger())
	require.True(t, N(0).IsZero())
}

func TestNum_IntPow(t *testing.T) {
	require.Equal(t, "1024", intPow(N(2), 10).String())
	require.Equal(t, "1/8", intPow(N(2), -3).String())
	require.Equal(t, "9/4", intPow(F(3, 2), 2).String())
	require.Equal(t, "1", intPow(N(7), 0).String())
}

func TestAdd_CollectsLikeTerms(t *testing.T) {
	x := S("x")
	require.Equal(t, "3*x + 2", AddOf(x, x, x, N(2)).String())

	// Like terms with symbolic parts beyond a bare symbol.
	got := AddOf(
		MulOf(N(2), x, LnOf(x)),
		MulOf(N(3), x, LnOf(x)),
	)
	require.Equal(t, "5*ln(x)*x", got.String())

	// Cancellation to zero.
	require.Equal(t, "0", AddOf(x, MulOf(N(-1), x)).String())
}

func TestAdd_FlattensNested(t *testing.T) {
	x := S("x")
	got := AddOf(AddOf(x, N(1)), AddOf(x, N(2)))
	require.Equal(t, "2*x + 3", got.String())
}

func TestMul_MergesPowers(t *testing.T) {
	x := S("x")
	require.Equal(t, "x^2", MulOf(x, x).String())
	require.Equal(t, "x^5", MulOf(PowOf(x, N(2)), PowOf(x, N(3))).String())
	require.Equal(t, "1", MulOf(x, PowOf(x, N(-1))).String())
	require.Equal(t, "0", MulOf(N(0), SinOf(x)).String())
}

func TestMul_QuotientCancellation(t *testing.T) {
	x := S("x")
	num := MulOf(ExpOf(x), SinOf(x))
	require.Equal(t, "1", DivOf(num, num).String())

	ratio := DivOf(MulOf(N(3), x, CosOf(x)), MulOf(N(6), x, CosOf(x)))
	require.Equal(t, "1/2", ratio.String())
}

func TestPow_Rules(t *testing.T) {
	x := S("x")
	require.Equal(t, "1", PowOf(x, N(0)).String())
	require.Equal(t, "x", PowOf(x, N(1)).String())
	require.Equal(t, "8", PowOf(N(2), N(3)).String())
	require.Equal(t, "x^6", PowOf(PowOf(x, N(2)), N(3)).String())
	// abs squared loses the bars.
	require.Equal(t, "x^2", PowOf(AbsOf(x), N(2)).String())
	// Integer powers distribute over products; factors sort by string.
	require.Equal(t, "sin(x)^2*x^2", PowOf(MulOf(x, SinOf(x)), N(2)).String())
}

func TestPow_ExactSquareRoots(t *testing.T) {
	require.Equal(t, "3", SqrtOf(N(9)).String())
	require.Equal(t, "1/2", SqrtOf(F(1, 4)).String())
	require.Equal(t, "8", PowOf(N(4), F(3, 2)).String())
	// Inexact roots stay symbolic.
	require.Equal(t, "2^(1/2)", SqrtOf(N(2)).String())
}

func TestFunc_ExactFolding(t *testing.T) {
	x := S("x")
	require.Equal(t, "0", SinOf(N(0)).String())
	require.Equal(t, "1", CosOf(N(0)).String())
	require.Equal(t, "1", ExpOf(N(0)).String())
	require.Equal(t, "0", LnOf(N(1)).String())
	require.Equal(t, "x", ExpOf(LnOf(x)).String())
	require.Equal(t, "x", LnOf(ExpOf(x)).String())
	require.Equal(t, "3", AbsOf(N(-3)).String())
	require.Equal(t, "abs(2*x)", AbsOf(MulOf(N(-2), x)).String())
	// Exactness: no float folding for transcendental values.
	require.Equal(t, "sin(2)", SinOf(N(2)).String())
}

func TestDiff_PowerAndChainRules(t *testing.T) {
	x := S("x")
	require.Equal(t, "3*x^2", Diff(PowOf(x, N(3)), "x").String())
	require.Equal(t, "cos(x)", Diff(SinOf(x), "x").String())
	require.Equal(t, "exp(x)", Diff(ExpOf(x), "x").String())
	require.Equal(t, "x^(-1)", Diff(LnOf(x), "x").String())

	// Chain rule: d/dx sin(x^2) = 2*cos(x^2)*x.
	d := Diff(SinOf(PowOf(x, N(2))), "x")
	require.True(t, zeroEquivalent(SubOf(d, MulOf(N(2), x, CosOf(PowOf(x, N(2)))))))
}

func TestDiff_ProductRule(t *testing.T) {
	x := S("x")
	d := Diff(MulOf(x, SinOf(x)), "x")
	require.Equal(t, "cos(x)*x + sin(x)", d.String())

	// The two equivalent forms do not share a canonical shape, so the
	// comparison against the textbook form is numeric.
	want := AddOf(SinOf(x), MulOf(x, CosOf(x)))
	residual := SubOf(d, want)
	for _, p := range []float64{-1, 0.5, 2} {
		n, ok := Sub(residual, "x", NFloat(p)).Eval()
		require.True(t, ok)
		require.InDelta(t, 0.0, n.Float64(), 1e-9)
	}
}

func TestDiff_AbsKeepsSign(t *testing.T) {
	x := S("x")
	d := Diff(AbsOf(x), "x")
	// d|x|/dx is x/|x|: +1 at 2, -1 at -2.
	n, ok := Sub(d, "x", N(2)).Eval()
	require.True(t, ok)
	require.InDelta(t, 1.0, n.Float64(), 1e-12)
	n, ok = Sub(d, "x", N(-2)).Eval()
	require.True(t, ok)
	require.InDelta(t, -1.0, n.Float64(), 1e-12)
}

func TestSub_Substitution(t *testing.T) {
	x := S("x")
	linear := AddOf(MulOf(N(2), x), N(3))
	require.Equal(t, "13", Sub(linear, "x", N(5)).String())
	require.Equal(t, "2*y + 3", Sub(linear, "x", S("y")).String())
	// Substitution re-simplifies.
	require.Equal(t, "1", Sub(MulOf(x, PowOf(S("y"), N(-1))), "x", S("y")).String())
}

func TestEval_Numeric(t *testing.T) {
	x := S("x")
	e := AddOf(MulOf(N(2), SinOf(x)), CosOf(x))
	n, ok := Sub(e, "x", NFloat(0.5)).Eval()
	require.True(t, ok)
	require.InDelta(t, 2*math.Sin(0.5)+math.Cos(0.5), n.Float64(), 1e-9)

	// ln of a non-positive value does not evaluate.
	_, ok = Sub(LnOf(x), "x", N(-1)).Eval()
	require.False(t, ok)

	// Symbols never evaluate.
	_, ok = x.Eval()
	require.False(t, ok)
}

func TestIntegral_FirstClass(t *testing.T) {
	x := S("x")
	f := SinOf(SinOf(x))
	in := IntegralOf(f, "x")
	require.Equal(t, "integral(sin(sin(x)), x)", in.String())

	// Wrapping twice is the identity.
	require.True(t, IntegralOf(in, "x").Equal(in))

	// FTC: differentiating in the integration variable recovers the
	// integrand.
	require.True(t, Diff(in, "x").Equal(f))

	// The integration variable is bound.
	require.True(t, Sub(in, "x", N(3)).Equal(in))

	// Other variables substitute under the integral sign.
	inY := IntegralOf(MulOf(S("a"), SinOf(x)), "x")
	got := Sub(inY, "a", N(2))
	require.Equal(t, "integral(2*sin(x), x)", got.String())
}

func TestFreeSymbols_IncludesIntegralVar(t *testing.T) {
	x, y := S("x"), S("y")
	syms := FreeSymbols(AddOf(MulOf(x, y), S("z")))
	require.Len(t, syms, 3)
	require.Contains(t, syms, "x")
	require.Contains(t, syms, "y")
	require.Contains(t, syms, "z")

	syms = FreeSymbols(IntegralOf(SinOf(x), "x"))
	require.Contains(t, syms, "x")
}

func TestSimplify_Idempotent(t *testing.T) {
	x := S("x")
	exprs := []Expr{
		AddOf(x, x, N(2)),
		MulOf(N(2), PowOf(x, N(2)), SinOf(x)),
		DivOf(SinOf(x), CosOf(x)),
		PowOf(AddOf(x, N(1)), F(1, 2)),
	}
	for _, e := range exprs {
		once := Simplify(e)
		require.True(t, once.Equal(Simplify(once)), "not idempotent: %s", e.String())
	}
}
