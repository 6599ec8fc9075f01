package antideriv

import (
	"math/big"
)

// ============================================================
// Layer 6 — trigonometric power reduction
// ============================================================

// trigProduct is an integrand of the shape sin^m(u)*cos^n(u) with a
// shared linear argument u = a*x + b.
type trigProduct struct {
	m, n int64
	arg  Expr
	a    Expr
}

// maxTrigPower bounds the exponents this layer will expand; anything
// larger declines rather than building huge polynomials.
const maxTrigPower = 30

// matchTrigProduct reads e as sin^m(u)*cos^n(u). Every factor must be a
// sin or cos power with the same argument, exponents must be positive
// integers, and the argument must be linear in the variable.
func matchTrigProduct(e Expr, varName string) (trigProduct, bool) {
	var tp trigProduct
	for _, f := range factorsOf(e) {
		fn, pow := f, int64(1)
		if p, isPow := f.(*Pow); isPow {
			n, isNum := p.exp.(*Num)
			if !isNum || !n.IsInteger() || !n.IsPositive() {
				return tp, false
			}
			pow = n.val.Num().Int64()
			fn = p.base
		}
		g, isFunc := fn.(*Func)
		if !isFunc || (g.name != "sin" && g.name != "cos") || pow > maxTrigPower {
			return tp, false
		}
		if tp.arg == nil {
			tp.arg = g.arg
		} else if !tp.arg.Equal(g.arg) {
			return tp, false
		}
		if g.name == "sin" {
			tp.m += pow
		} else {
			tp.n += pow
		}
	}
	if tp.arg == nil || tp.m+tp.n < 2 {
		return tp, false
	}
	a, _, ok := matchLinear(tp.arg, varName)
	if !ok {
		return tp, false
	}
	tp.a = a
	return tp, true
}

// tryTrigReduce integrates sin^m(u)*cos^n(u) products. Single-function
// powers use the textbook degree-reduction recurrences; an odd mixed
// power peels one factor off as the differential and expands the rest
// through the Pythagorean identity; even-even products rewrite through
// the half-angle identities and reduce the doubled argument.
func (e *Engine) tryTrigReduce(req request) outcome {
	tp, ok := matchTrigProduct(req.integrand, req.varName)
	if !ok {
		return notApplicable()
	}
	aInv := PowOf(tp.a, N(-1))

	switch {
	case tp.n == 0:
		return found(sinPowerIntegral(tp.m, tp.arg, aInv, req.varName))
	case tp.m == 0:
		return found(cosPowerIntegral(tp.n, tp.arg, aInv, req.varName))
	case tp.m%2 == 1:
		// t = cos(u): sin^m cos^n dx = -(1/a)(1-t^2)^((m-1)/2) t^n dt
		p := polyShiftUp(trigBinomial(-1, (tp.m-1)/2), tp.n)
		body := trigPolyIntegral(p, CosOf(tp.arg), req.integrand, req.varName)
		return found(MulOf(N(-1), aInv, body))
	case tp.n%2 == 1:
		// t = sin(u): sin^m cos^n dx = (1/a) t^m (1-t^2)^((n-1)/2) dt
		p := polyShiftUp(trigBinomial(-1, (tp.n-1)/2), tp.m)
		body := trigPolyIntegral(p, SinOf(tp.arg), req.integrand, req.varName)
		return found(MulOf(aInv, body))
	default:
		// Both even: sin^2 = (1-cos(2u))/2, cos^2 = (1+cos(2u))/2.
		half := big.NewRat(1, 2)
		negHalf := big.NewRat(-1, 2)
		p := polyMul(
			trigHalfAngle(negHalf, tp.m/2),
			trigHalfAngle(half, tp.n/2),
		)
		arg2 := Simplify(MulOf(N(2), tp.arg))
		aInv2 := MulOf(F(1, 2), aInv)
		var pieces []Expr
		for k := 0; k <= p.degree(); k++ {
			q := p.coeff(k)
			if q.Sign() == 0 {
				continue
			}
			if k == 0 {
				pieces = append(pieces, MulOf(NRat(q), S(req.varName)))
				continue
			}
			pieces = append(pieces, MulOf(NRat(q), cosPowerIntegral(int64(k), arg2, aInv2, req.varName)))
		}
		return found(AddOf(pieces...))
	}
}

// sinPowerIntegral is ∫ sin^k(u) dx with u = a*x+b, via the recurrence
//
//	∫sin^k = -sin^(k-1)*cos/(a*k) + (k-1)/k * ∫sin^(k-2)
func sinPowerIntegral(k int64, u, aInv Expr, varName string) Expr {
	switch k {
	case 0:
		return S(varName)
	case 1:
		return MulOf(N(-1), aInv, CosOf(u))
	}
	first := MulOf(F(-1, k), aInv, PowOf(SinOf(u), N(k-1)), CosOf(u))
	rest := MulOf(F(k-1, k), sinPowerIntegral(k-2, u, aInv, varName))
	return AddOf(first, rest)
}

// cosPowerIntegral is the cosine counterpart of sinPowerIntegral.
func cosPowerIntegral(k int64, u, aInv Expr, varName string) Expr {
	switch k {
	case 0:
		return S(varName)
	case 1:
		return MulOf(aInv, SinOf(u))
	}
	first := MulOf(F(1, k), aInv, PowOf(CosOf(u), N(k-1)), SinOf(u))
	rest := MulOf(F(k-1, k), cosPowerIntegral(k-2, u, aInv, varName))
	return AddOf(first, rest)
}

// trigBinomial expands (1 + s*t^2)^k as a polynomial in t.
func trigBinomial(s int64, k int64) poly {
	base := poly{big.NewRat(1, 1), big.NewRat(0, 1), big.NewRat(s, 1)}
	out := polyConst(big.NewRat(1, 1))
	for i := int64(0); i < k; i++ {
		out = polyMul(out, base)
	}
	return out
}

// trigHalfAngle expands (1/2 + s*c)^k, s = ±1/2, as a polynomial in
// c = cos(2u).
func trigHalfAngle(s *big.Rat, k int64) poly {
	base := poly{big.NewRat(1, 2), new(big.Rat).Set(s)}
	out := polyConst(big.NewRat(1, 1))
	for i := int64(0); i < k; i++ {
		out = polyMul(out, base)
	}
	return out
}

// polyShiftUp multiplies p by t^n.
func polyShiftUp(p poly, n int64) poly {
	if p.isZero() || n == 0 {
		return p
	}
	out := make(poly, int64(len(p))+n)
	for i := range out {
		out[i] = big.NewRat(0, 1)
	}
	copy(out[n:], p)
	return out
}

// trigPolyIntegral integrates the expanded polynomial term by term and
// substitutes the trig expression back in for the working variable.
func trigPolyIntegral(p poly, back, integrand Expr, varName string) Expr {
	tmp := freshVarFor(integrand, varName)
	anti := polyIntegralExpr(p, tmp)
	return Sub(anti, tmp, back)
}
