package antideriv

// ============================================================
// Layer 4 — integration by parts
// ============================================================

// liateRank orders factor classes for the choice of u: logarithmic,
// inverse trigonometric, algebraic, trigonometric, exponential. Lower
// rank differentiates toward something simpler.
func liateRank(e Expr) int {
	switch v := e.(type) {
	case *Func:
		switch v.name {
		case "ln":
			return 0
		case "asin", "acos", "atan":
			return 1
		case "sin", "cos", "tan", "sinh", "cosh", "tanh":
			return 3
		case "exp":
			return 4
		}
	case *Sym:
		return 2
	case *Pow:
		if _, ok := v.exp.(*Num); ok {
			if inner, ok2 := v.base.(*Func); ok2 {
				return liateRank(inner)
			}
			return liateRank(v.base)
		}
		if _, ok := v.base.(*Num); ok {
			// c^x is exponential.
			return 4
		}
	}
	return 5
}

// tryByParts integrates two-factor products by ∫u dv = u*v - ∫v du,
// choosing u by LIATE. The cyclic family (∫e^x*sin(x) and friends) is
// detected after one or two expansions and solved as a linear equation
// instead of recursing forever; everything else recurses through the
// dispatcher with depth+1.
func (e *Engine) tryByParts(req request) outcome {
	coeff, rest := splitCoeff(req.integrand)
	fs := factorsOf(rest)
	if len(fs) != 2 {
		return notApplicable()
	}
	r0, r1 := liateRank(fs[0]), liateRank(fs[1])
	if r0 == r1 || r0 == 5 || r1 == 5 {
		return notApplicable()
	}
	u, dv := fs[0], fs[1]
	if r1 < r0 {
		u, dv = fs[1], fs[0]
	}
	// Fold any residual numeric coefficient into u.
	u = MulOf(coeff, u)

	v, ok := e.recurse(dv, req)
	if !ok {
		return notApplicable()
	}
	du := Diff(u, req.varName)
	uv := MulOf(u, v)
	remaining := Simplify(MulOf(v, du))

	// Cycle after one expansion: ∫v du = c * ∫(original).
	if c, isMul := constRatio(remaining, req.integrand); isMul {
		onePlusC := numAdd(N(1), c)
		if onePlusC.IsZero() {
			return notApplicable()
		}
		return found(MulOf(numRecip(onePlusC), uv))
	}

	// Cycle after two expansions, the ∫e^x*sin(x) shape.
	if res, ok := e.byPartsCycle(uv, remaining, req); ok {
		return found(res)
	}

	sub, ok := e.recurse(remaining, req)
	if !ok {
		return notApplicable()
	}
	return found(SubOf(uv, sub))
}

// byPartsCycle expands ∫remaining by parts once more and, when the new
// remainder is a constant multiple c of the original integrand, solves
//
//	I = uv - (u2*v2 - c*I)  =>  I = (uv - u2*v2)/(1 - c)
func (e *Engine) byPartsCycle(uv, remaining Expr, req request) (Expr, bool) {
	coeff, rest := splitCoeff(remaining)
	fs := factorsOf(rest)
	if len(fs) != 2 {
		return nil, false
	}
	r0, r1 := liateRank(fs[0]), liateRank(fs[1])
	if r0 == r1 || r0 == 5 || r1 == 5 {
		return nil, false
	}
	u2, dv2 := fs[0], fs[1]
	if r1 < r0 {
		u2, dv2 = fs[1], fs[0]
	}
	u2 = MulOf(coeff, u2)
	v2, ok := e.recurse(dv2, req)
	if !ok {
		return nil, false
	}
	du2 := Diff(u2, req.varName)
	remaining2 := Simplify(MulOf(v2, du2))
	c, isMul := constRatio(remaining2, req.integrand)
	if !isMul {
		return nil, false
	}
	oneMinusC := numSub(N(1), c)
	if oneMinusC.IsZero() {
		return nil, false
	}
	return MulOf(numRecip(oneMinusC), SubOf(uv, MulOf(u2, v2))), true
}

// constRatio reports whether a == c*b for a numeric constant c.
func constRatio(a, b Expr) (*Num, bool) {
	ratio := Simplify(DivOf(a, b))
	c, ok := ratio.(*Num)
	return c, ok
}
