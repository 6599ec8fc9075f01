// Package antideriv is a symbolic integration engine for Go.
//
// Given an expression and a variable it produces an exact antiderivative in
// closed form, proves that none exists in elementary terms, or wraps the
// input as an unevaluated integral. Arithmetic is exact (math/big.Rat),
// expressions are immutable values, and every public operation is a pure
// function, so the package is safe for concurrent use across independent
// inputs.
package antideriv

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an immutable symbolic expression tree.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("antideriv: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("antideriv: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }

// intPow raises a rational to an integer power, exactly.
func intPow(base *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	result := N(1)
	acc := base
	for e > 0 {
		if e&1 == 1 {
			result = numMul(result, acc)
		}
		acc = numMul(acc, acc)
		e >>= 1
	}
	if neg {
		return numRecip(result)
	}
	return result
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym          { return &Sym{name: name} }
func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) Name() string       { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf builds a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

// Simplify flattens nested sums, folds numeric terms, and collects like
// terms keyed on the non-numeric part of each product, so that
// 2*x*ln(x) + 3*x*ln(x) becomes 5*x*ln(x).
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	sort.Strings(order)
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.IsOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, remulCoeff(c, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// remulCoeff attaches a numeric coefficient to an already-simplified
// coefficient-free expression without re-running the full product
// simplifier (which would recurse back into Add.Simplify).
func remulCoeff(c *Num, rest Expr) Expr {
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(varName, value)
	}
	return AddOf(out...)
}

func (a *Add) Diff(varName string) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff(varName)
	}
	return AddOf(out...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf builds a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Simplify flattens nested products, folds numeric factors, and merges
// equal bases into a single power, so that x * x^2 becomes x^3 and
// x * x^-1 collapses to 1.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := powParts(f)
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}
	others := []Expr{}
	for _, key := range order {
		g := groups[key]
		var merged Expr
		if len(g.exps) == 1 {
			merged = powOrBase(g.base, g.exps[0])
		} else {
			merged = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			// A merged power can re-expand (rare); fold its pieces.
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, merged)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// powParts views any factor as base^exp.
func powParts(e Expr) (base, exp Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// powOrBase rebuilds a single-occurrence factor without re-simplifying
// when the exponent is the trivial 1.
func powOrBase(base, exp Expr) Expr {
	if n, ok := exp.(*Num); ok && n.IsOne() {
		return base
	}
	return PowOf(base, exp)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(varName, value)
	}
	return MulOf(out...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		rest := make([]Expr, 0, len(m.factors))
		rest = append(rest, dfi)
		for j, fj := range m.factors {
			if j != i {
				rest = append(rest, fj)
			}
		}
		terms[i] = MulOf(rest...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// splitCoeff separates the leading numeric coefficient of a simplified
// product from the rest: 3*x*sin(x) -> (3, x*sin(x)). Non-products and
// coefficient-free products return coefficient 1.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) == 0 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: append([]Expr{}, rest...)}
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsZero() {
			if en, ok2 := exp.(*Num); ok2 && (en.IsZero() || en.IsNegative()) {
				// 0^0 and 0^negative stay symbolic.
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		if bn.IsOne() {
			return N(1)
		}
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			e := en.val.Num().Int64()
			if e >= -64 && e <= 64 {
				return intPow(bn, e)
			}
		}
		// Exact half-integer powers fold when the square root is rational:
		// 4^(1/2) -> 2, 4^(-1/2) -> 1/2. Inexact roots stay symbolic.
		if en, ok2 := exp.(*Num); ok2 && !en.IsInteger() && en.val.Denom().Cmp(big.NewInt(2)) == 0 {
			if root, rok := ratSqrt(bn.val); rok && en.val.Num().IsInt64() {
				k := en.val.Num().Int64()
				if k >= -64 && k <= 64 {
					return intPow(NRat(root), k)
				}
			}
		}
	}
	// abs(u)^(2k) == u^(2k); keeps derivative quotients like u*u'/abs(u)^2
	// collapsing to u'/u.
	if fn, ok := base.(*Func); ok && fn.name == "abs" {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() && en.val.Num().Int64()%2 == 0 {
			return PowOf(fn.arg, exp)
		}
	}
	// (u^a)^n == u^(a*n) for integer n only; fractional outer exponents
	// must not commute past an inner even power.
	if inner, ok := base.(*Pow); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	// (u*v)^n distributes for integer n, which lets the product
	// simplifier cancel quotients like (f*g)/(f*g).
	if inner, ok := base.(*Mul); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			out := make([]Expr, len(inner.factors))
			for i, f := range inner.factors {
				out[i] = PowOf(f, en)
			}
			return MulOf(out...)
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow, *Integral:
		baseStr = "(" + baseStr + ")"
	default:
		if n, ok := p.base.(*Num); ok && (n.IsNegative() || !n.IsInteger()) {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul, *Pow:
		expStr = "(" + expStr + ")"
	default:
		if n, ok := p.exp.(*Num); ok && (n.IsNegative() || !n.IsInteger()) {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, ok := p.exp.(*Num); ok {
		// d(u^c) = c*u^(c-1)*u'
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if _, ok := p.base.(*Num); ok {
		// d(c^v) = c^v*ln(c)*v'
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	// General case: u^v * (v'*ln(u) + v*u'/u)
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if e.IsInteger() {
		ei := e.val.Num().Int64()
		if ei >= -256 && ei <= 256 {
			if b.IsZero() && ei <= 0 {
				return nil, false
			}
			return intPow(b, ei), true
		}
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

// ============================================================
// Func — named single-argument function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// FuncOf applies a named function; unknown names stay symbolic.
func FuncOf(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

// Simplify folds only exact special values and inverse compositions;
// sin(2) stays symbolic rather than collapsing to a float, preserving
// exactness for the round-trip law.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if n, ok := arg.(*Num); ok && n.IsZero() {
			return N(0)
		}
	case "cos", "cosh":
		if n, ok := arg.(*Num); ok && n.IsZero() {
			return N(1)
		}
	case "exp":
		if n, ok := arg.(*Num); ok && n.IsZero() {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "ln":
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
		if inner, ok := arg.(*Func); ok && inner.name == "abs" {
			return inner
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 2 {
			if c, ok2 := m.factors[0].(*Num); ok2 && c.IsNegative() {
				rest := append([]Expr{numNeg(c)}, m.factors[1:]...)
				return AbsOf(MulOf(rest...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = PowOf(CosOf(f.arg), N(-2))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		// abs'(u) = u/abs(u), valid away from zero.
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	var r float64
	switch f.name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		if v <= 0 {
			return nil, false
		}
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	default:
		return nil, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return NFloat(r), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Integral — unevaluated integral
// ============================================================

// Integral is the symbolic fallback: an antiderivative request preserved
// as data. It is a first-class expression, so results containing it can
// still be printed, substituted, and differentiated.
type Integral struct {
	integrand Expr
	varName   string
}

// IntegralOf wraps f dx as an unevaluated integral. Wrapping an integral
// in the same variable is the identity, which makes the fallback layer
// idempotent.
func IntegralOf(integrand Expr, varName string) Expr {
	simplified := integrand.Simplify()
	if in, ok := simplified.(*Integral); ok && in.varName == varName {
		return in
	}
	return &Integral{integrand: simplified, varName: varName}
}

func (in *Integral) Simplify() Expr { return IntegralOf(in.integrand, in.varName) }
func (in *Integral) String() string {
	return "integral(" + in.integrand.String() + ", " + in.varName + ")"
}

func (in *Integral) Sub(varName string, value Expr) Expr {
	if varName == in.varName {
		// The integration variable is bound.
		return in
	}
	return IntegralOf(in.integrand.Sub(varName, value), in.varName)
}

// Diff applies the fundamental theorem of calculus for the integration
// variable and differentiates under the integral sign otherwise.
func (in *Integral) Diff(varName string) Expr {
	if varName == in.varName {
		return in.integrand
	}
	return IntegralOf(in.integrand.Diff(varName), in.varName)
}

func (in *Integral) Eval() (*Num, bool) { return nil, false }

func (in *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && in.varName == o.varName && in.integrand.Equal(o.integrand)
}

func (in *Integral) Integrand() Expr { return in.integrand }
func (in *Integral) VarName() string { return in.varName }

// ============================================================
// Shared helpers
// ============================================================

// Simplify is the collaborator-facing entry point; it is idempotent.
func Simplify(e Expr) Expr { return e.Simplify() }

// Diff differentiates and simplifies.
func Diff(expr Expr, varName string) Expr { return expr.Diff(varName).Simplify() }

// Sub substitutes and simplifies.
func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// FreeSymbols returns the set of symbol names occurring in e. Integration
// variables of embedded unevaluated integrals are included: they are not
// free in the strict sense, but every caller here only asks "does the
// variable occur at all".
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Integral:
		collectSymbols(v.integrand, out)
		out[v.varName] = struct{}{}
	}
}

// dependsOn reports whether e mentions varName.
func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// exprSize counts tree nodes; the substitution layer ranks candidates by
// the size of the reduced integrand.
func exprSize(e Expr) int {
	switch v := e.(type) {
	case *Add:
		n := 1
		for _, t := range v.terms {
			n += exprSize(t)
		}
		return n
	case *Mul:
		n := 1
		for _, f := range v.factors {
			n += exprSize(f)
		}
		return n
	case *Pow:
		return 1 + exprSize(v.base) + exprSize(v.exp)
	case *Func:
		return 1 + exprSize(v.arg)
	case *Integral:
		return 1 + exprSize(v.integrand)
	}
	return 1
}

// zeroEquivalent reports whether simplify(e) is literally zero.
func zeroEquivalent(e Expr) bool {
	n, ok := e.Simplify().(*Num)
	return ok && n.IsZero()
}
