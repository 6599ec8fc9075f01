package antideriv

import (
	"math/big"
)

// tableRule is one templated canonical form. A matcher either produces the
// antiderivative or declines; every wildcard constraint (coefficient free
// of the variable, exponent != -1, positive constant under a square root)
// is verified inside the matcher, never assumed.
type tableRule struct {
	name  string
	match func(e Expr, varName string) (Expr, bool)
}

// DefaultTable returns the built-in catalog of canonical forms, cheapest
// layer of the dispatcher. The catalog is an immutable value; callers who
// want a different one inject their own through NewEngineWith.
//
// Each rule with a linear-argument wildcard covers its whole family
// (f(x), f(a*x), f(a*x+b)), so the catalog spans roughly fifty concrete
// textbook forms.
func DefaultTable() []tableRule {
	return []tableRule{
		{"x", matchIdentity},
		{"u^n", matchPower},
		{"1/u", matchReciprocal},
		{"exp(u)", matchExpLinear},
		{"c^u", matchConstPow},
		{"sin(u)", matchSinLinear},
		{"cos(u)", matchCosLinear},
		{"tan(u)", matchTanLinear},
		{"sec^2(u)", matchSec2},
		{"csc^2(u)", matchCsc2},
		{"sec(u)tan(u)", matchSecTan},
		{"csc(u)cot(u)", matchCscCot},
		{"sin(u)cos(u)", matchSinCos},
		{"sin^2(u)", matchSin2},
		{"cos^2(u)", matchCos2},
		{"tan^2(u)", matchTan2},
		{"ln(u)", matchLnLinear},
		{"ln(x)/x", matchLnOverX},
		{"x*ln(x)", matchXLn},
		{"x*exp(u)", matchXExp},
		{"x*sin(u)", matchXSin},
		{"x*cos(u)", matchXCos},
		{"sinh(u)", matchSinhLinear},
		{"cosh(u)", matchCoshLinear},
		{"tanh(u)", matchTanhLinear},
		{"asin(x)", matchAsinDirect},
		{"acos(x)", matchAcosDirect},
		{"atan(x)", matchAtanDirect},
		{"abs(x)", matchAbs},
		{"1/(x^2+c)", matchAtanQuadratic},
		{"1/sqrt(c-x^2)", matchAsinSqrt},
		{"1/sqrt(x^2+c)", matchAsinhSqrt},
	}
}

func (e *Engine) tryTable(req request) outcome {
	for _, r := range e.table {
		if res, ok := r.match(req.integrand, req.varName); ok {
			return found(res)
		}
	}
	return notApplicable()
}

// ============================================================
// Wildcard helpers
// ============================================================

// matchLinear decomposes arg as a*x + b with a and b free of the
// variable and a nonzero.
func matchLinear(arg Expr, varName string) (a, b Expr, ok bool) {
	switch v := arg.(type) {
	case *Sym:
		if v.name == varName {
			return N(1), N(0), true
		}
	case *Mul:
		var consts []Expr
		sawVar := false
		for _, f := range v.factors {
			if sym, isSym := f.(*Sym); isSym && sym.name == varName {
				sawVar = true
				continue
			}
			if dependsOn(f, varName) {
				return nil, nil, false
			}
			consts = append(consts, f)
		}
		if sawVar && len(consts) > 0 {
			return MulOf(consts...), N(0), true
		}
	case *Add:
		aAcc := []Expr{}
		bAcc := []Expr{}
		for _, t := range v.terms {
			if !dependsOn(t, varName) {
				bAcc = append(bAcc, t)
				continue
			}
			ta, tb, tok := matchLinear(t, varName)
			if !tok || !zeroEquivalent(tb) {
				return nil, nil, false
			}
			aAcc = append(aAcc, ta)
		}
		if len(aAcc) == 0 {
			return nil, nil, false
		}
		return AddOf(aAcc...), AddOf(bAcc...), true
	}
	return nil, nil, false
}

// matchFuncLinear matches name(a*x+b).
func matchFuncLinear(e Expr, varName, name string) (u Expr, a Expr, ok bool) {
	f, isFunc := e.(*Func)
	if !isFunc || f.name != name {
		return nil, nil, false
	}
	a, _, ok = matchLinear(f.arg, varName)
	if !ok {
		return nil, nil, false
	}
	return f.arg, a, true
}

// overA divides by the inner-derivative constant.
func overA(e, a Expr) Expr { return MulOf(e, PowOf(a, N(-1))) }

// factorsOf views e as a product factor list.
func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

// ============================================================
// Matchers
// ============================================================

func matchIdentity(e Expr, varName string) (Expr, bool) {
	if s, ok := e.(*Sym); ok && s.name == varName {
		return MulOf(F(1, 2), PowOf(S(varName), N(2))), true
	}
	return nil, false
}

func matchPower(e Expr, varName string) (Expr, bool) {
	p, ok := e.(*Pow)
	if !ok {
		return nil, false
	}
	n, ok := p.exp.(*Num)
	if !ok || n.IsNegOne() {
		return nil, false
	}
	a, _, ok := matchLinear(p.base, varName)
	if !ok {
		return nil, false
	}
	np1 := numAdd(n, N(1))
	return overA(MulOf(numRecip(np1), PowOf(p.base, np1)), a), true
}

func matchReciprocal(e Expr, varName string) (Expr, bool) {
	p, ok := e.(*Pow)
	if !ok {
		return nil, false
	}
	n, ok := p.exp.(*Num)
	if !ok || !n.IsNegOne() {
		return nil, false
	}
	a, _, ok := matchLinear(p.base, varName)
	if !ok {
		return nil, false
	}
	return overA(LnOf(AbsOf(p.base)), a), true
}

func matchExpLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "exp")
	if !ok {
		return nil, false
	}
	return overA(ExpOf(u), a), true
}

func matchConstPow(e Expr, varName string) (Expr, bool) {
	p, ok := e.(*Pow)
	if !ok {
		return nil, false
	}
	base, ok := p.base.(*Num)
	if !ok || !base.IsPositive() || base.IsOne() {
		return nil, false
	}
	a, _, ok := matchLinear(p.exp, varName)
	if !ok {
		return nil, false
	}
	return overA(MulOf(e, PowOf(LnOf(base), N(-1))), a), true
}

func matchSinLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "sin")
	if !ok {
		return nil, false
	}
	return overA(MulOf(N(-1), CosOf(u)), a), true
}

func matchCosLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "cos")
	if !ok {
		return nil, false
	}
	return overA(SinOf(u), a), true
}

func matchTanLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "tan")
	if !ok {
		return nil, false
	}
	return overA(MulOf(N(-1), LnOf(AbsOf(CosOf(u)))), a), true
}

// trigPowArg matches name(a*x+b)^exp.
func trigPowArg(e Expr, varName, name string, exp int64) (u Expr, a Expr, ok bool) {
	p, isPow := e.(*Pow)
	if !isPow {
		return nil, nil, false
	}
	n, isNum := p.exp.(*Num)
	if !isNum || !n.Equal(N(exp)) {
		return nil, nil, false
	}
	return matchFuncLinear(p.base, varName, name)
}

func matchSec2(e Expr, varName string) (Expr, bool) {
	u, a, ok := trigPowArg(e, varName, "cos", -2)
	if !ok {
		return nil, false
	}
	return overA(TanOf(u), a), true
}

func matchCsc2(e Expr, varName string) (Expr, bool) {
	u, a, ok := trigPowArg(e, varName, "sin", -2)
	if !ok {
		return nil, false
	}
	return overA(MulOf(N(-1), CosOf(u), PowOf(SinOf(u), N(-1))), a), true
}

// pairMatch scans a two-factor product for pattern(f1) and pattern(f2)
// sharing the same linear argument.
func pairMatch(e Expr, varName string, m1, m2 func(Expr, string) (Expr, Expr, bool)) (u Expr, a Expr, ok bool) {
	fs := factorsOf(e)
	if len(fs) != 2 {
		return nil, nil, false
	}
	for _, ord := range [][2]Expr{{fs[0], fs[1]}, {fs[1], fs[0]}} {
		u1, a1, ok1 := m1(ord[0], varName)
		u2, _, ok2 := m2(ord[1], varName)
		if ok1 && ok2 && u1.Equal(u2) {
			return u1, a1, true
		}
	}
	return nil, nil, false
}

func matchSecTan(e Expr, varName string) (Expr, bool) {
	// sin(u)/cos(u)^2 -> 1/cos(u)
	u, a, ok := pairMatch(e, varName,
		func(x Expr, v string) (Expr, Expr, bool) { return matchFuncLinear(x, v, "sin") },
		func(x Expr, v string) (Expr, Expr, bool) { return trigPowArg(x, v, "cos", -2) })
	if !ok {
		return nil, false
	}
	return overA(PowOf(CosOf(u), N(-1)), a), true
}

func matchCscCot(e Expr, varName string) (Expr, bool) {
	// cos(u)/sin(u)^2 -> -1/sin(u)
	u, a, ok := pairMatch(e, varName,
		func(x Expr, v string) (Expr, Expr, bool) { return matchFuncLinear(x, v, "cos") },
		func(x Expr, v string) (Expr, Expr, bool) { return trigPowArg(x, v, "sin", -2) })
	if !ok {
		return nil, false
	}
	return overA(MulOf(N(-1), PowOf(SinOf(u), N(-1))), a), true
}

func matchSinCos(e Expr, varName string) (Expr, bool) {
	u, a, ok := pairMatch(e, varName,
		func(x Expr, v string) (Expr, Expr, bool) { return matchFuncLinear(x, v, "sin") },
		func(x Expr, v string) (Expr, Expr, bool) { return matchFuncLinear(x, v, "cos") })
	if !ok {
		return nil, false
	}
	return overA(MulOf(F(1, 2), PowOf(SinOf(u), N(2))), a), true
}

func matchSin2(e Expr, varName string) (Expr, bool) {
	u, a, ok := trigPowArg(e, varName, "sin", 2)
	if !ok {
		return nil, false
	}
	return AddOf(
		MulOf(F(1, 2), S(varName)),
		MulOf(F(-1, 2), overA(MulOf(SinOf(u), CosOf(u)), a)),
	), true
}

func matchCos2(e Expr, varName string) (Expr, bool) {
	u, a, ok := trigPowArg(e, varName, "cos", 2)
	if !ok {
		return nil, false
	}
	return AddOf(
		MulOf(F(1, 2), S(varName)),
		MulOf(F(1, 2), overA(MulOf(SinOf(u), CosOf(u)), a)),
	), true
}

func matchTan2(e Expr, varName string) (Expr, bool) {
	u, a, ok := trigPowArg(e, varName, "tan", 2)
	if !ok {
		return nil, false
	}
	return AddOf(overA(TanOf(u), a), MulOf(N(-1), S(varName))), true
}

func matchLnLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "ln")
	if !ok {
		return nil, false
	}
	return overA(AddOf(MulOf(u, LnOf(u)), MulOf(N(-1), u)), a), true
}

func matchLnOverX(e Expr, varName string) (Expr, bool) {
	u, _, ok := pairMatch(e, varName,
		func(x Expr, v string) (Expr, Expr, bool) { return matchFuncLinear(x, v, "ln") },
		func(x Expr, v string) (Expr, Expr, bool) {
			p, isPow := x.(*Pow)
			if !isPow {
				return nil, nil, false
			}
			n, isNum := p.exp.(*Num)
			if !isNum || !n.IsNegOne() {
				return nil, nil, false
			}
			s, isSym := p.base.(*Sym)
			if !isSym || s.name != v {
				return nil, nil, false
			}
			return p.base, N(1), true
		})
	if !ok {
		return nil, false
	}
	// Only the pure ln(x)/x form; ln(ax+b)/x is not this rule.
	lnArg, isSym := u.(*Sym)
	if !isSym || lnArg.name != varName {
		return nil, false
	}
	return MulOf(F(1, 2), PowOf(LnOf(S(varName)), N(2))), true
}

func matchXLn(e Expr, varName string) (Expr, bool) {
	fs := factorsOf(e)
	if len(fs) != 2 {
		return nil, false
	}
	var lnPart *Func
	sawX := false
	for _, f := range fs {
		if s, ok := f.(*Sym); ok && s.name == varName {
			sawX = true
			continue
		}
		if fn, ok := f.(*Func); ok && fn.name == "ln" {
			if s, ok2 := fn.arg.(*Sym); ok2 && s.name == varName {
				lnPart = fn
			}
		}
	}
	if !sawX || lnPart == nil {
		return nil, false
	}
	x2 := PowOf(S(varName), N(2))
	return AddOf(
		MulOf(F(1, 2), x2, LnOf(S(varName))),
		MulOf(F(-1, 4), x2),
	), true
}

// xTimesFunc matches x * name(a*x+b).
func xTimesFunc(e Expr, varName, name string) (u Expr, a Expr, ok bool) {
	fs := factorsOf(e)
	if len(fs) != 2 {
		return nil, nil, false
	}
	for _, ord := range [][2]Expr{{fs[0], fs[1]}, {fs[1], fs[0]}} {
		s, isSym := ord[0].(*Sym)
		if !isSym || s.name != varName {
			continue
		}
		if u, a, ok = matchFuncLinear(ord[1], varName, name); ok {
			return u, a, true
		}
	}
	return nil, nil, false
}

func matchXExp(e Expr, varName string) (Expr, bool) {
	u, a, ok := xTimesFunc(e, varName, "exp")
	if !ok {
		return nil, false
	}
	// d/dx [ e^u*(x/a - 1/a^2) ] = x*e^u for u = a*x+b.
	aInv := PowOf(a, N(-1))
	return MulOf(ExpOf(u), AddOf(MulOf(S(varName), aInv), MulOf(N(-1), PowOf(a, N(-2))))), true
}

func matchXSin(e Expr, varName string) (Expr, bool) {
	u, a, ok := xTimesFunc(e, varName, "sin")
	if !ok {
		return nil, false
	}
	return AddOf(
		MulOf(SinOf(u), PowOf(a, N(-2))),
		MulOf(N(-1), S(varName), CosOf(u), PowOf(a, N(-1))),
	), true
}

func matchXCos(e Expr, varName string) (Expr, bool) {
	u, a, ok := xTimesFunc(e, varName, "cos")
	if !ok {
		return nil, false
	}
	return AddOf(
		MulOf(CosOf(u), PowOf(a, N(-2))),
		MulOf(S(varName), SinOf(u), PowOf(a, N(-1))),
	), true
}

func matchSinhLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "sinh")
	if !ok {
		return nil, false
	}
	return overA(CoshOf(u), a), true
}

func matchCoshLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "cosh")
	if !ok {
		return nil, false
	}
	return overA(SinhOf(u), a), true
}

func matchTanhLinear(e Expr, varName string) (Expr, bool) {
	u, a, ok := matchFuncLinear(e, varName, "tanh")
	if !ok {
		return nil, false
	}
	return overA(LnOf(CoshOf(u)), a), true
}

func directArg(e Expr, varName, name string) bool {
	f, ok := e.(*Func)
	if !ok || f.name != name {
		return false
	}
	s, ok := f.arg.(*Sym)
	return ok && s.name == varName
}

func matchAsinDirect(e Expr, varName string) (Expr, bool) {
	if !directArg(e, varName, "asin") {
		return nil, false
	}
	x := S(varName)
	return AddOf(MulOf(x, AsinOf(x)), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(x, N(2)))))), true
}

func matchAcosDirect(e Expr, varName string) (Expr, bool) {
	if !directArg(e, varName, "acos") {
		return nil, false
	}
	x := S(varName)
	return AddOf(MulOf(x, AcosOf(x)), MulOf(N(-1), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(x, N(2))))))), true
}

func matchAtanDirect(e Expr, varName string) (Expr, bool) {
	if !directArg(e, varName, "atan") {
		return nil, false
	}
	x := S(varName)
	return AddOf(
		MulOf(x, AtanOf(x)),
		MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(x, N(2))))),
	), true
}

func matchAbs(e Expr, varName string) (Expr, bool) {
	if !directArg(e, varName, "abs") {
		return nil, false
	}
	x := S(varName)
	return MulOf(F(1, 2), x, AbsOf(x)), true
}

// quadBase reads e as base^exp and returns the base as a rational
// polynomial of degree two with zero linear coefficient.
func quadBase(e Expr, varName string, wantExp *Num) (c0, c2 *big.Rat, ok bool) {
	p, isPow := e.(*Pow)
	if !isPow {
		return nil, nil, false
	}
	n, isNum := p.exp.(*Num)
	if !isNum || !n.Equal(wantExp) {
		return nil, nil, false
	}
	q, qok := polyFromExpr(p.base, varName)
	if !qok || q.degree() != 2 || q.coeff(1).Sign() != 0 {
		return nil, nil, false
	}
	return q.coeff(0), q.coeff(2), true
}

func matchAtanQuadratic(e Expr, varName string) (Expr, bool) {
	c0, c2, ok := quadBase(e, varName, N(-1))
	if !ok || c0.Sign() <= 0 || c2.Sign() <= 0 {
		return nil, false
	}
	// 1/(c2*x^2 + c0) = (1/c2) * 1/(x^2 + k^2), k = sqrt(c0/c2).
	k := SqrtOf(NRat(new(big.Rat).Quo(c0, c2)))
	kInv := PowOf(k, N(-1))
	return MulOf(NRat(new(big.Rat).Inv(c2)), kInv, AtanOf(MulOf(S(varName), kInv))), true
}

func matchAsinSqrt(e Expr, varName string) (Expr, bool) {
	c0, c2, ok := quadBase(e, varName, F(-1, 2))
	if !ok || c0.Sign() <= 0 || c2.Cmp(ratNegOne) != 0 {
		return nil, false
	}
	// 1/sqrt(c - x^2) -> asin(x/sqrt(c))
	k := SqrtOf(NRat(c0))
	return AsinOf(MulOf(S(varName), PowOf(k, N(-1)))), true
}

func matchAsinhSqrt(e Expr, varName string) (Expr, bool) {
	c0, c2, ok := quadBase(e, varName, F(-1, 2))
	if !ok || c0.Sign() <= 0 || c2.Cmp(ratOne) != 0 {
		return nil, false
	}
	// 1/sqrt(x^2 + c) -> ln(x + sqrt(x^2 + c))
	inner := AddOf(PowOf(S(varName), N(2)), NRat(c0))
	return LnOf(AddOf(S(varName), SqrtOf(inner))), true
}
