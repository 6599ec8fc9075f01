package antideriv

import (
	"math/big"
)

// ============================================================
// Layer 2 — rational function integration
// ============================================================

// ratFuncFromExpr interprets e as P(x)/Q(x) with rational coefficients.
// The decomposition is strict; any non-polynomial piece fails the match.
func ratFuncFromExpr(e Expr, varName string) (num, den poly, ok bool) {
	if p, pok := polyFromExpr(e, varName); pok {
		return p, polyConst(big.NewRat(1, 1)), true
	}
	switch v := e.(type) {
	case *Pow:
		n, isNum := v.exp.(*Num)
		if !isNum || !n.IsInteger() || !n.IsNegative() {
			return nil, nil, false
		}
		base, bok := polyFromExpr(v.base, varName)
		if !bok {
			return nil, nil, false
		}
		k := -n.val.Num().Int64()
		if k > 16 {
			return nil, nil, false
		}
		d := polyConst(big.NewRat(1, 1))
		for i := int64(0); i < k; i++ {
			d = polyMul(d, base)
		}
		return polyConst(big.NewRat(1, 1)), d, true
	case *Mul:
		num = polyConst(big.NewRat(1, 1))
		den = polyConst(big.NewRat(1, 1))
		for _, f := range v.factors {
			fn, fd, fok := ratFuncFromExpr(f, varName)
			if !fok {
				return nil, nil, false
			}
			num = polyMul(num, fn)
			den = polyMul(den, fd)
		}
		return num, den, true
	}
	return nil, nil, false
}

// tryRational integrates exact rational functions by partial fractions.
// All-or-nothing: if the denominator does not factor into linear and
// irreducible quadratic pieces over the rationals, the layer declines.
func (e *Engine) tryRational(req request) outcome {
	num, den, ok := ratFuncFromExpr(req.integrand, req.varName)
	if !ok || den.degree() < 1 || num.isZero() {
		return notApplicable()
	}

	// Cancel shared factors so repeated roots are genuine.
	if g := polyGCD(num, den); g.degree() >= 1 {
		num, _ = polyDivMod(num, g)
		den, _ = polyDivMod(den, g)
	}
	if den.degree() < 1 {
		return notApplicable()
	}

	var pieces []Expr

	// Polynomial part first.
	if num.degree() >= den.degree() {
		quot, rem := polyDivMod(num, den)
		pieces = append(pieces, polyIntegralExpr(quot, req.varName))
		num = rem
	}
	if num.isZero() {
		return found(AddOf(pieces...))
	}

	fact, ok := factorRationals(den)
	if !ok {
		return notApplicable()
	}
	// Normalise to a monic denominator, folding the lead into the
	// numerator.
	monicDen := den.monic()
	num = polyScale(num, new(big.Rat).Inv(fact.lead))

	terms, ok := partialFractionTerms(num, monicDen, fact, req.varName)
	if !ok {
		return notApplicable()
	}
	pieces = append(pieces, terms...)
	return found(AddOf(pieces...))
}

// polyIntegralExpr integrates a polynomial exactly, term by term.
func polyIntegralExpr(p poly, varName string) Expr {
	if p.isZero() {
		return N(0)
	}
	out := make(poly, len(p)+1)
	out[0] = big.NewRat(0, 1)
	for i, c := range p {
		out[i+1] = new(big.Rat).Quo(c, big.NewRat(int64(i+1), 1))
	}
	return polyToExpr(polyTrim(out), varName)
}

// partialFractionTerms decomposes num/den (den monic, deg(num)<deg(den))
// and integrates each simple fraction.
func partialFractionTerms(num, den poly, fact factorization, varName string) ([]Expr, bool) {
	// Fast path from the residue method: distinct linear roots only.
	if len(fact.quads) == 0 {
		simple := true
		for _, lf := range fact.linears {
			if lf.mult != 1 {
				simple = false
				break
			}
		}
		if simple {
			return residueTerms(num, den, fact, varName), true
		}
	}

	// General case: undetermined coefficients, solved exactly.
	type column struct {
		basis poly // multiplier polynomial den / factor^j (optionally *x)
		emit  func(coeff *big.Rat) Expr
	}
	var cols []column

	x := S(varName)
	for _, lf := range fact.linears {
		root := lf.root
		linearPoly := poly{new(big.Rat).Neg(root), big.NewRat(1, 1)}
		powAcc := polyConst(big.NewRat(1, 1))
		for j := 1; j <= lf.mult; j++ {
			powAcc = polyMul(powAcc, linearPoly)
			basis, r := polyDivMod(den, powAcc)
			if !r.isZero() {
				return nil, false
			}
			jj := j
			linExpr := SubOf(x, NRat(root))
			cols = append(cols, column{basis: basis, emit: func(c *big.Rat) Expr {
				if jj == 1 {
					// A/(x-r) -> A*ln|x-r|
					return MulOf(NRat(c), LnOf(AbsOf(linExpr)))
				}
				// A/(x-r)^j -> A*(x-r)^(1-j)/(1-j)
				k := big.NewRat(int64(1-jj), 1)
				return MulOf(NRat(new(big.Rat).Quo(c, k)), PowOf(linExpr, NRat(k)))
			}})
		}
	}
	for _, qf := range fact.quads {
		qPoly := poly{new(big.Rat).Set(qf.c), new(big.Rat).Set(qf.b), big.NewRat(1, 1)}
		powAcc := polyConst(big.NewRat(1, 1))
		for j := 1; j <= qf.mult; j++ {
			powAcc = polyMul(powAcc, qPoly)
			basis, r := polyDivMod(den, powAcc)
			if !r.isZero() {
				return nil, false
			}
			jj := j
			b := new(big.Rat).Set(qf.b)
			c0 := new(big.Rat).Set(qf.c)
			// Two unknowns per level: B*x + C.
			var bCoeff, cCoeff *big.Rat
			cols = append(cols, column{basis: polyMul(basis, polyX()), emit: func(v *big.Rat) Expr {
				bCoeff = new(big.Rat).Set(v)
				return nil
			}})
			cols = append(cols, column{basis: basis, emit: func(v *big.Rat) Expr {
				cCoeff = new(big.Rat).Set(v)
				return quadFractionIntegral(bCoeff, cCoeff, b, c0, jj, varName)
			}})
		}
	}

	n := den.degree()
	a := make([][]*big.Rat, n)
	rhs := make([]*big.Rat, n)
	for row := 0; row < n; row++ {
		a[row] = make([]*big.Rat, len(cols))
		for colIdx, col := range cols {
			a[row][colIdx] = col.basis.coeff(row)
		}
		rhs[row] = num.coeff(row)
	}
	sol, ok := solveLinearSystem(a, rhs)
	if !ok {
		return nil, false
	}
	var out []Expr
	for i, col := range cols {
		if term := col.emit(sol[i]); term != nil {
			out = append(out, term)
		}
	}
	return out, true
}

// residueTerms handles the distinct-simple-pole case with the residue
// formula A_i = num(r_i)/den'(r_i).
func residueTerms(num, den poly, fact factorization, varName string) []Expr {
	dDen := den.derivative()
	out := make([]Expr, 0, len(fact.linears))
	for _, lf := range fact.linears {
		res := new(big.Rat).Quo(num.evalRat(lf.root), dDen.evalRat(lf.root))
		linExpr := SubOf(S(varName), NRat(lf.root))
		out = append(out, MulOf(NRat(res), LnOf(AbsOf(linExpr))))
	}
	return out
}

// quadFractionIntegral integrates (B*x + C)/(x^2 + b*x + c)^j for an
// irreducible quadratic, by completing the square: with u = x + b/2 and
// d = c - b^2/4 > 0 the two pieces are the logarithmic derivative part
// and the arctangent reduction.
func quadFractionIntegral(bCoeff, cCoeff, b, c *big.Rat, j int, varName string) Expr {
	x := S(varName)
	quad := AddOf(PowOf(x, N(2)), MulOf(NRat(b), x), NRat(c))
	half := big.NewRat(1, 2)
	d := new(big.Rat).Sub(c, new(big.Rat).Mul(new(big.Rat).Mul(b, b), big.NewRat(1, 4)))
	u := AddOf(x, NRat(new(big.Rat).Mul(b, half)))

	// B*x + C = (B/2)*(2x + b) + (C - B*b/2)
	logScale := new(big.Rat).Mul(bCoeff, half)
	atanScale := new(big.Rat).Sub(cCoeff, new(big.Rat).Mul(logScale, b))

	var pieces []Expr
	if logScale.Sign() != 0 {
		if j == 1 {
			pieces = append(pieces, MulOf(NRat(logScale), LnOf(quad)))
		} else {
			k := big.NewRat(int64(1-j), 1)
			pieces = append(pieces, MulOf(NRat(new(big.Rat).Mul(logScale, new(big.Rat).Inv(k))), PowOf(quad, NRat(k))))
		}
	}
	if atanScale.Sign() != 0 {
		pieces = append(pieces, MulOf(NRat(atanScale), quadPowerIntegral(u, quad, d, j, varName)))
	}
	return AddOf(pieces...)
}

// quadPowerIntegral is ∫ du/(u^2+d)^j via the standard reduction
//
//	I_j = u/(2d(j-1)(u^2+d)^(j-1)) + (2j-3)/(2d(j-1)) * I_(j-1)
//
// with I_1 = atan(u/sqrt(d))/sqrt(d).
func quadPowerIntegral(u, quad Expr, d *big.Rat, j int, varName string) Expr {
	if j == 1 {
		sq := SqrtOf(NRat(d))
		sqInv := PowOf(sq, N(-1))
		return MulOf(sqInv, AtanOf(MulOf(u, sqInv)))
	}
	denScale := new(big.Rat).Mul(d, big.NewRat(int64(2*(j-1)), 1))
	first := MulOf(NRat(new(big.Rat).Inv(denScale)), u, PowOf(quad, N(int64(1-j))))
	restScale := new(big.Rat).Quo(big.NewRat(int64(2*j-3), 1), denScale)
	return AddOf(first, MulOf(NRat(restScale), quadPowerIntegral(u, quad, d, j-1, varName)))
}
