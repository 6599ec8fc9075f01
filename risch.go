package antideriv

import (
	"math/big"
)

// ============================================================
// Layer 7 — Risch decision procedure
// ============================================================
//
// The layer decides integrability for a restricted but sound fragment:
//
//   - pure rational integrands, via Ostrogradsky-Hermite reduction plus
//     a logarithmic-derivative test (this closes denominators the
//     partial-fraction layer cannot factor);
//   - p(x)*exp(w(x)) with polynomial p and w, via the Risch differential
//     equation with a hard degree bound (proves e.g. exp(x^2)
//     non-elementary);
//   - r(x)/ln(u(x)) with rational r and u, via the residue test at the
//     logarithmic pole (proves e.g. 1/ln(x) non-elementary).
//
// NonElementary is only ever returned on these branches, where the
// Liouville argument is airtight. Everything else declines; algebraic
// extensions report UnsupportedTower.

type towerKind int

const (
	towerExp towerKind = iota
	towerLog
)

// towerLevel is one transcendental monomial over the rational base
// field: gen = exp(arg) or gen = ln(arg).
type towerLevel struct {
	kind towerKind
	arg  Expr
	gen  Expr
}

// scanTower inventories the extension tower the integrand lives in.
// algebraic flags fractional powers of the variable; foreign flags
// monomials outside the exp/log tower (trig, inverse trig, unevaluated
// integrals), which this layer has no theory for.
func scanTower(e Expr, varName string) (levels []towerLevel, algebraic, foreign bool) {
	seen := map[string]struct{}{}
	var walk func(Expr)
	walk = func(ex Expr) {
		switch v := ex.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			if dependsOn(v.base, varName) {
				if n, ok := v.exp.(*Num); ok && !n.IsInteger() {
					algebraic = true
				}
			}
			if dependsOn(v.exp, varName) {
				// c^x and x^x are implicit exp levels this fragment
				// does not model.
				foreign = true
			}
			walk(v.base)
			walk(v.exp)
		case *Func:
			if dependsOn(v.arg, varName) {
				switch v.name {
				case "exp":
					if _, dup := seen[ex.String()]; !dup {
						seen[ex.String()] = struct{}{}
						levels = append(levels, towerLevel{kind: towerExp, arg: v.arg, gen: ex})
					}
				case "ln":
					if _, dup := seen[ex.String()]; !dup {
						seen[ex.String()] = struct{}{}
						levels = append(levels, towerLevel{kind: towerLog, arg: v.arg, gen: ex})
					}
				default:
					foreign = true
				}
			}
			walk(v.arg)
		case *Integral:
			foreign = true
		}
	}
	walk(e)
	return levels, algebraic, foreign
}

// tryRisch runs the decision procedure, checking the wall-clock deadline
// between phases.
func (e *Engine) tryRisch(req request) outcome {
	if req.expired() {
		return timedOut()
	}
	levels, algebraic, foreign := scanTower(req.integrand, req.varName)
	if algebraic {
		return unsupportedTower()
	}
	if foreign {
		return notApplicable()
	}
	if len(levels) == 0 {
		return e.rischRational(req)
	}
	if len(levels) != 1 {
		// Mixed or nested towers are outside the decided fragment.
		return notApplicable()
	}
	if req.expired() {
		return timedOut()
	}
	lv := levels[0]
	switch lv.kind {
	case towerExp:
		return e.rischExp(req, lv)
	case towerLog:
		return e.rischLog(req, lv)
	}
	return notApplicable()
}

// ============================================================
// Rational integrands: Ostrogradsky-Hermite reduction
// ============================================================

// rischRational integrates num/den by splitting off the rational part of
// the antiderivative with the Ostrogradsky method, then closing the
// remaining squarefree-denominator piece when its numerator is a constant
// multiple of the denominator's derivative. No factoring is needed, so
// this reaches denominators the partial-fraction layer declines.
func (e *Engine) rischRational(req request) outcome {
	num, den, ok := ratFuncFromExpr(req.integrand, req.varName)
	if !ok || den.degree() < 1 || num.isZero() {
		return notApplicable()
	}
	if g := polyGCD(num, den); g.degree() >= 1 {
		num, _ = polyDivMod(num, g)
		den, _ = polyDivMod(den, g)
	}

	var pieces []Expr
	if num.degree() >= den.degree() {
		quot, rem := polyDivMod(num, den)
		pieces = append(pieces, polyIntegralExpr(quot, req.varName))
		num = rem
	}
	if num.isZero() {
		return found(AddOf(pieces...))
	}

	rational, logNum, logDen, ok := ostrogradsky(num, den)
	if !ok {
		return notApplicable()
	}
	if rational != nil {
		pieces = append(pieces, rational(req.varName))
	}
	if !logNum.isZero() {
		logTerm, ok := logDerivativeTerm(logNum, logDen, req.varName)
		if !ok {
			return notApplicable()
		}
		pieces = append(pieces, logTerm)
	}
	return found(AddOf(pieces...))
}

// ostrogradsky decomposes ∫num/den = B/D1 + ∫C/D2 where D1 = gcd(den,
// den') carries every repeated root and D2 = den/D1 is squarefree. B and
// C are found by exact linear algebra from
//
//	num = B'*D2 - B*(D1'*D2/D1) + C*D1
//
// The rational part is returned as a builder so the caller chooses the
// variable name; a nil builder means the denominator was already
// squarefree.
func ostrogradsky(num, den poly) (rational func(string) Expr, logNum, logDen poly, ok bool) {
	d1 := polyGCD(den, den.derivative())
	if d1.degree() < 1 {
		return nil, num, den, true
	}
	d2, _ := polyDivMod(den, d1)
	// D1'*D2/D1 is a polynomial whenever D1 | den and D2 = den/D1.
	t, r := polyDivMod(polyMul(d1.derivative(), d2), d1)
	if !r.isZero() {
		return nil, nil, nil, false
	}

	nb := d1.degree() // unknowns in B, deg B < deg D1
	nc := d2.degree() // unknowns in C, deg C < deg D2
	rows := den.degree()
	cols := nb + nc
	a := make([][]*big.Rat, rows)
	rhs := make([]*big.Rat, rows)
	for row := 0; row < rows; row++ {
		a[row] = make([]*big.Rat, cols)
		rhs[row] = num.coeff(row)
	}
	// Column for B coefficient b_i: x^i contributes (x^i)'*D2 - x^i*T.
	for i := 0; i < nb; i++ {
		col := polySub(polyMul(monomialDerivative(i), d2), polyShiftUpInt(t, i))
		for row := 0; row < rows; row++ {
			a[row][i] = col.coeff(row)
		}
	}
	// Column for C coefficient c_j: x^j*D1.
	for j := 0; j < nc; j++ {
		col := polyShiftUpInt(d1, j)
		for row := 0; row < rows; row++ {
			a[row][nb+j] = col.coeff(row)
		}
	}
	sol, ok := solveLinearSystem(a, rhs)
	if !ok {
		return nil, nil, nil, false
	}
	b := polyTrim(append(poly{}, sol[:nb]...))
	c := polyTrim(append(poly{}, sol[nb:]...))
	builder := func(varName string) Expr {
		return MulOf(polyToExpr(b, varName), PowOf(polyToExpr(d1, varName), N(-1)))
	}
	return builder, c, d2, true
}

// monomialDerivative is d/dx x^i as a poly.
func monomialDerivative(i int) poly {
	if i == 0 {
		return polyZero()
	}
	out := make(poly, i)
	for k := range out {
		out[k] = big.NewRat(0, 1)
	}
	out[i-1] = big.NewRat(int64(i), 1)
	return polyTrim(out)
}

func polyShiftUpInt(p poly, n int) poly {
	return polyShiftUp(p, int64(n))
}

// logDerivativeTerm closes ∫num/den for squarefree den when num is a
// constant multiple of den', yielding c*ln|den|.
func logDerivativeTerm(num, den poly, varName string) (Expr, bool) {
	dd := den.derivative()
	if dd.isZero() {
		return nil, false
	}
	// num = c*dd for a single rational c.
	c := new(big.Rat).Quo(num.lead(), dd.lead())
	if !polySub(num, polyScale(dd, c)).isZero() {
		return nil, false
	}
	return MulOf(NRat(c), LnOf(AbsOf(polyToExpr(den, varName)))), true
}

// ============================================================
// Exponential level: the Risch differential equation
// ============================================================

// rischExp decides ∫p(x)*exp(w(x)) dx for polynomial p and w. By the
// Liouville theorem any elementary antiderivative has the form
// q(x)*exp(w(x)), which forces the differential equation
//
//	q' + w'*q = p
//
// Comparing degrees pins deg q = deg p - deg w' exactly (no cancellation
// is possible at the top), so the equation reduces to a finite linear
// system: unsolvable means provably non-elementary.
func (e *Engine) rischExp(req request, lv towerLevel) outcome {
	p, w, k, ok := expShape(req.integrand, lv, req.varName)
	if !ok {
		return notApplicable()
	}
	// exp(w)^k = exp(k*w); fold the power into the argument.
	if k != 1 {
		w = polyScale(w, big.NewRat(k, 1))
	}
	wd := w.derivative()
	if wd.isZero() {
		return notApplicable()
	}

	var degQ int
	if wd.degree() >= 1 {
		degQ = p.degree() - wd.degree()
		if degQ < 0 {
			return nonElementary()
		}
	} else {
		degQ = p.degree()
	}
	if req.expired() {
		return timedOut()
	}

	// Match coefficients of q' + w'*q = p with deg q = degQ.
	rows := p.degree() + 1
	if rr := wd.degree() + degQ + 1; rr > rows {
		rows = rr
	}
	cols := degQ + 1
	a := make([][]*big.Rat, rows)
	rhs := make([]*big.Rat, rows)
	for row := 0; row < rows; row++ {
		a[row] = make([]*big.Rat, cols)
		rhs[row] = p.coeff(row)
	}
	for i := 0; i <= degQ; i++ {
		col := polyAdd(monomialDerivative(i), polyShiftUpInt(wd, i))
		for row := 0; row < rows; row++ {
			a[row][i] = col.coeff(row)
		}
	}
	sol, ok := solveLinearSystem(a, rhs)
	if !ok {
		return nonElementary()
	}
	q := polyTrim(append(poly{}, sol...))
	wBack := polyToExpr(w, req.varName)
	return found(MulOf(polyToExpr(q, req.varName), ExpOf(wBack)))
}

// expShape matches integrand = p(x) * exp(arg)^k with polynomial p,
// polynomial arg, and nonzero integer k.
func expShape(integrand Expr, lv towerLevel, varName string) (p, w poly, k int64, ok bool) {
	w, ok = polyFromExpr(lv.arg, varName)
	if !ok || w.degree() < 1 {
		return nil, nil, 0, false
	}
	k = 0
	polyPart := polyConst(big.NewRat(1, 1))
	for _, f := range factorsOf(integrand) {
		if f.Equal(lv.gen) {
			k++
			continue
		}
		if pw, isPow := f.(*Pow); isPow && pw.base.Equal(lv.gen) {
			n, isNum := pw.exp.(*Num)
			if !isNum || !n.IsInteger() {
				return nil, nil, 0, false
			}
			k += n.val.Num().Int64()
			continue
		}
		fp, fok := polyFromExpr(f, varName)
		if !fok {
			return nil, nil, 0, false
		}
		polyPart = polyMul(polyPart, fp)
	}
	if k == 0 || polyPart.isZero() {
		return nil, nil, 0, false
	}
	return polyPart, w, k, true
}

// ============================================================
// Logarithmic level: the residue test
// ============================================================

// rischLog decides ∫r(x)/ln(u(x)) dx for rational r and u. The integrand
// has a simple pole at the monomial θ = ln(u); for an elementary
// antiderivative the residue must be a constant c, coming from a c*ln(θ)
// term, which forces r = c*u'/u. Constant residue closes the integral as
// c*ln|ln(u)|; a non-constant rational residue is a proof of
// non-elementarity (this is how 1/ln(x) falls).
func (e *Engine) rischLog(req request, lv towerLevel) outcome {
	r, ok := logShape(req.integrand, lv)
	if !ok {
		return notApplicable()
	}
	du := Diff(lv.arg, req.varName)
	if zeroEquivalent(du) {
		return notApplicable()
	}
	residue := Simplify(MulOf(r, lv.arg, PowOf(du, N(-1))))
	if c, isConst := residue.(*Num); isConst {
		return found(MulOf(c, LnOf(AbsOf(LnOf(lv.arg)))))
	}
	if rn, rd, isRat := ratFuncFromExpr(residue, req.varName); isRat && !rn.isZero() && !rd.isZero() {
		return nonElementary()
	}
	return notApplicable()
}

// logShape matches integrand = r(x) * ln(u)^(-1) with r rational in x.
func logShape(integrand Expr, lv towerLevel) (r Expr, ok bool) {
	var rest []Expr
	sawPole := false
	for _, f := range factorsOf(integrand) {
		if pw, isPow := f.(*Pow); isPow && pw.base.Equal(lv.gen) {
			n, isNum := pw.exp.(*Num)
			if !isNum || !n.IsNegOne() || sawPole {
				return nil, false
			}
			sawPole = true
			continue
		}
		if f.Equal(lv.gen) {
			return nil, false
		}
		rest = append(rest, f)
	}
	if !sawPole {
		return nil, false
	}
	if len(rest) == 0 {
		return N(1), true
	}
	return MulOf(rest...), true
}
