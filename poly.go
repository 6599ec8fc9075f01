package antideriv

import (
	"math/big"
)

// poly is a dense univariate polynomial over the rationals; index i holds
// the coefficient of x^i. The zero polynomial is the empty slice and no
// polynomial carries trailing zero coefficients.
type poly []*big.Rat

func polyZero() poly { return poly{} }

func polyConst(r *big.Rat) poly {
	if r.Sign() == 0 {
		return polyZero()
	}
	return poly{new(big.Rat).Set(r)}
}

func polyX() poly { return poly{big.NewRat(0, 1), big.NewRat(1, 1)} }

func polyTrim(p poly) poly {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

func (p poly) isZero() bool { return len(p) == 0 }
func (p poly) degree() int  { return len(p) - 1 } // -1 for the zero polynomial

func (p poly) clone() poly {
	out := make(poly, len(p))
	for i, c := range p {
		out[i] = new(big.Rat).Set(c)
	}
	return out
}

func (p poly) coeff(i int) *big.Rat {
	if i < 0 || i >= len(p) {
		return big.NewRat(0, 1)
	}
	return new(big.Rat).Set(p[i])
}

func (p poly) lead() *big.Rat {
	if p.isZero() {
		return big.NewRat(0, 1)
	}
	return new(big.Rat).Set(p[len(p)-1])
}

func polyAdd(a, b poly) poly {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(poly, n)
	for i := range out {
		out[i] = new(big.Rat).Add(a.coeff(i), b.coeff(i))
	}
	return polyTrim(out)
}

func polySub(a, b poly) poly {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(poly, n)
	for i := range out {
		out[i] = new(big.Rat).Sub(a.coeff(i), b.coeff(i))
	}
	return polyTrim(out)
}

func polyMul(a, b poly) poly {
	if a.isZero() || b.isZero() {
		return polyZero()
	}
	out := make(poly, len(a)+len(b)-1)
	for i := range out {
		out[i] = big.NewRat(0, 1)
	}
	for i, ca := range a {
		for j, cb := range b {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(ca, cb))
		}
	}
	return polyTrim(out)
}

func polyScale(a poly, r *big.Rat) poly {
	if r.Sign() == 0 {
		return polyZero()
	}
	out := make(poly, len(a))
	for i, c := range a {
		out[i] = new(big.Rat).Mul(c, r)
	}
	return out
}

// polyDivMod computes a = q*b + r with deg(r) < deg(b).
func polyDivMod(a, b poly) (q, r poly) {
	if b.isZero() {
		panic("antideriv: polynomial division by zero")
	}
	r = a.clone()
	if a.degree() < b.degree() {
		return polyZero(), r
	}
	q = make(poly, a.degree()-b.degree()+1)
	for i := range q {
		q[i] = big.NewRat(0, 1)
	}
	invLead := new(big.Rat).Inv(b.lead())
	for !r.isZero() && r.degree() >= b.degree() {
		shift := r.degree() - b.degree()
		factor := new(big.Rat).Mul(r.lead(), invLead)
		q[shift].Add(q[shift], factor)
		// r -= factor * x^shift * b
		for i, c := range b {
			r[i+shift] = new(big.Rat).Sub(r[i+shift], new(big.Rat).Mul(factor, c))
		}
		r = polyTrim(r)
	}
	return polyTrim(q), r
}

// polyGCD returns the monic greatest common divisor.
func polyGCD(a, b poly) poly {
	x, y := a.clone(), b.clone()
	for !y.isZero() {
		_, r := polyDivMod(x, y)
		x, y = y, r
	}
	if x.isZero() {
		return x
	}
	return x.monic()
}

func (p poly) monic() poly {
	if p.isZero() {
		return p
	}
	return polyTrim(polyScale(p, new(big.Rat).Inv(p.lead())))
}

func (p poly) derivative() poly {
	if len(p) <= 1 {
		return polyZero()
	}
	out := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Rat).Mul(p[i], big.NewRat(int64(i), 1))
	}
	return polyTrim(out)
}

func (p poly) evalRat(x *big.Rat) *big.Rat {
	acc := big.NewRat(0, 1)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

// polySquarefree returns the Yun decomposition: p = c * prod out[i]^(i+1)
// with each out[i] squarefree and pairwise coprime.
func polySquarefree(p poly) []poly {
	if p.degree() < 1 {
		return nil
	}
	p = p.monic()
	d := p.derivative()
	g := polyGCD(p, d)
	if g.degree() < 1 {
		return []poly{p}
	}
	var out []poly
	w, _ := polyDivMod(p, g)
	y, _ := polyDivMod(d, g)
	z := polySub(y, w.derivative())
	for !z.isZero() {
		f := polyGCD(w, z)
		out = append(out, f)
		w, _ = polyDivMod(w, f)
		y, _ = polyDivMod(z, f)
		z = polySub(y, w.derivative())
	}
	out = append(out, w)
	return out
}

// ============================================================
// Expr <-> poly conversion
// ============================================================

// polyFromExpr interprets e as a polynomial in varName with rational
// coefficients; any other symbol, negative or fractional power, function
// application, or embedded integral makes the conversion fail.
func polyFromExpr(e Expr, varName string) (poly, bool) {
	switch v := e.Simplify().(type) {
	case *Num:
		return polyConst(v.val), true
	case *Sym:
		if v.name == varName {
			return polyX(), true
		}
		return nil, false
	case *Add:
		acc := polyZero()
		for _, t := range v.terms {
			p, ok := polyFromExpr(t, varName)
			if !ok {
				return nil, false
			}
			acc = polyAdd(acc, p)
		}
		return acc, true
	case *Mul:
		acc := polyConst(big.NewRat(1, 1))
		for _, f := range v.factors {
			p, ok := polyFromExpr(f, varName)
			if !ok {
				return nil, false
			}
			acc = polyMul(acc, p)
		}
		return acc, true
	case *Pow:
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() {
			return nil, false
		}
		base, ok := polyFromExpr(v.base, varName)
		if !ok {
			return nil, false
		}
		e := n.val.Num().Int64()
		if e > 64 {
			return nil, false
		}
		acc := polyConst(big.NewRat(1, 1))
		for i := int64(0); i < e; i++ {
			acc = polyMul(acc, base)
		}
		return acc, true
	}
	return nil, false
}

func polyToExpr(p poly, varName string) Expr {
	if p.isZero() {
		return N(0)
	}
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, NRat(c))
		case 1:
			terms = append(terms, MulOf(NRat(c), S(varName)))
		default:
			terms = append(terms, MulOf(NRat(c), PowOf(S(varName), N(int64(i)))))
		}
	}
	return AddOf(terms...)
}

// ============================================================
// Factorisation over the rationals
// ============================================================

type linFactor struct {
	root *big.Rat
	mult int
}

// quadFactor is a monic irreducible x^2 + b*x + c with multiplicity.
type quadFactor struct {
	b, c *big.Rat
	mult int
}

type factorization struct {
	lead    *big.Rat
	linears []linFactor
	quads   []quadFactor
}

// factorRationals factors p into linear and irreducible quadratic factors
// over the rationals. It reports failure when an irreducible factor of
// degree >= 3 remains, which makes the caller decline rather than guess.
func factorRationals(p poly) (factorization, bool) {
	out := factorization{lead: p.lead()}
	if p.degree() < 1 {
		return out, !p.isZero()
	}
	rest := p.monic()

	// Deflate rational roots with multiplicity.
	for rest.degree() >= 1 {
		root, found := rationalRoot(rest)
		if !found {
			break
		}
		mult := 0
		divisor := poly{new(big.Rat).Neg(root), big.NewRat(1, 1)}
		for {
			q, r := polyDivMod(rest, divisor)
			if !r.isZero() {
				break
			}
			rest = q
			mult++
		}
		out.linears = append(out.linears, linFactor{root: root, mult: mult})
	}

	switch rest.degree() {
	case 0:
		return out, true
	case 2:
		b, c := rest.coeff(1), rest.coeff(0)
		// No rational roots here (deflation exhausted), so this
		// quadratic is irreducible over the rationals.
		out.quads = append(out.quads, quadFactor{b: b, c: c, mult: 1})
		return out, true
	case 4:
		// One shape still worth catching: a repeated irreducible
		// quadratic, as in (x^2+1)^2.
		if qs := polySquarefree(rest); len(qs) == 2 && qs[0].degree() == 0 && qs[1].degree() == 2 {
			b, c := qs[1].coeff(1), qs[1].coeff(0)
			out.quads = append(out.quads, quadFactor{b: b, c: c, mult: 2})
			return out, true
		}
	}
	return out, false
}

// rationalRoot finds one rational root of a monic polynomial, or reports
// that none exists within the search bound.
func rationalRoot(p poly) (*big.Rat, bool) {
	if p.isZero() {
		return nil, false
	}
	if p.coeff(0).Sign() == 0 {
		return big.NewRat(0, 1), true
	}
	// Clear denominators to an integer polynomial a_n x^n + ... + a_0;
	// candidate roots are ±(divisor of a_0)/(divisor of a_n).
	lcm := big.NewInt(1)
	for _, c := range p {
		g := new(big.Int).GCD(nil, nil, lcm, c.Denom())
		lcm.Div(lcm, g)
		lcm.Mul(lcm, c.Denom())
	}
	ints := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(v.Num())
	}
	a0 := new(big.Int).Abs(ints[0])
	an := new(big.Int).Abs(ints[len(ints)-1])
	if !a0.IsInt64() || !an.IsInt64() {
		return nil, false
	}
	ps := int64Divisors(a0.Int64())
	qs := int64Divisors(an.Int64())
	if ps == nil || qs == nil {
		return nil, false
	}
	for _, num := range ps {
		for _, den := range qs {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*num, den)
				if p.evalRat(cand).Sign() == 0 {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

// int64Divisors enumerates the positive divisors of n, giving up on
// pathologically large inputs so factoring fails closed.
func int64Divisors(n int64) []int64 {
	if n < 0 {
		n = -n
	}
	if n == 0 || n > 1_000_000_000 {
		return nil
	}
	var out []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if d != n/d {
				out = append(out, n/d)
			}
		}
		if len(out) > 400 {
			return nil
		}
	}
	return out
}

// ratSqrt returns the exact rational square root of r when one exists.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	sn := new(big.Int).Sqrt(r.Num())
	sd := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(sn, sn).Cmp(r.Num()) != 0 {
		return nil, false
	}
	if new(big.Int).Mul(sd, sd).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(sn, sd), true
}

// ============================================================
// Exact linear algebra
// ============================================================

// solveLinearSystem solves A*x = b over the rationals by Gaussian
// elimination with exact arithmetic. Underdetermined free variables are
// pinned to zero; an inconsistent system reports failure.
func solveLinearSystem(a [][]*big.Rat, b []*big.Rat) ([]*big.Rat, bool) {
	rows := len(a)
	if rows == 0 {
		return nil, false
	}
	cols := len(a[0])
	m := make([][]*big.Rat, rows)
	for i := range m {
		m[i] = make([]*big.Rat, cols+1)
		for j := 0; j < cols; j++ {
			m[i][j] = new(big.Rat).Set(a[i][j])
		}
		m[i][cols] = new(big.Rat).Set(b[i])
	}
	pivotCol := make([]int, 0, cols)
	row := 0
	for col := 0; col < cols && row < rows; col++ {
		pivot := -1
		for r := row; r < rows; r++ {
			if m[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		m[row], m[pivot] = m[pivot], m[row]
		inv := new(big.Rat).Inv(m[row][col])
		for j := col; j <= cols; j++ {
			m[row][j] = new(big.Rat).Mul(m[row][j], inv)
		}
		for r := 0; r < rows; r++ {
			if r == row || m[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(m[r][col])
			for j := col; j <= cols; j++ {
				m[r][j] = new(big.Rat).Sub(m[r][j], new(big.Rat).Mul(factor, m[row][j]))
			}
		}
		pivotCol = append(pivotCol, col)
		row++
	}
	// Rows of the form 0 = nonzero mean no solution.
	for r := row; r < rows; r++ {
		if m[r][cols].Sign() != 0 {
			return nil, false
		}
	}
	x := make([]*big.Rat, cols)
	for i := range x {
		x[i] = big.NewRat(0, 1)
	}
	for i, col := range pivotCol {
		x[col] = new(big.Rat).Set(m[i][cols])
	}
	return x, true
}
