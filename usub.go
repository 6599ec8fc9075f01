package antideriv

import (
	"sort"
	"strconv"
)

// ============================================================
// Layer 5 — u-substitution
// ============================================================

// substitutionCandidate is an inner expression plus the integrand it
// reduces to; candidates live only inside this layer.
type substitutionCandidate struct {
	inner   Expr
	reduced Expr // integrand rewritten in the substitution variable
	size    int
}

// tryUSub looks for an inner expression u whose derivative divides the
// integrand, leaving a single-variable function of u. Candidates are
// ranked by the node count of the reduced integrand (smaller first, ties
// broken by the candidate's string form, so the choice is deterministic)
// and tried best-first with a recursive dispatcher call.
func (e *Engine) tryUSub(req request) outcome {
	subVar := freshVarFor(req.integrand, req.varName)
	t := S(subVar)

	seen := map[string]struct{}{}
	var cands []substitutionCandidate
	for _, inner := range collectCandidates(req.integrand, req.varName) {
		key := inner.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		du := Diff(inner, req.varName)
		if zeroEquivalent(du) {
			continue
		}
		quotient := Simplify(DivOf(req.integrand, du))
		reduced := Simplify(replaceAll(quotient, inner, t))
		if dependsOn(reduced, req.varName) {
			continue
		}
		cands = append(cands, substitutionCandidate{
			inner:   inner,
			reduced: reduced,
			size:    exprSize(reduced),
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].size != cands[j].size {
			return cands[i].size < cands[j].size
		}
		return cands[i].inner.String() < cands[j].inner.String()
	})

	for _, c := range cands {
		sub, ok := e.recurse(c.reduced, request{
			integrand: c.reduced,
			varName:   subVar,
			depth:     req.depth,
			deadline:  req.deadline,
		})
		if !ok {
			continue
		}
		return found(Sub(sub, subVar, c.inner))
	}
	return notApplicable()
}

// collectCandidates gathers inner sub-expressions worth substituting:
// function arguments, power bases and exponents, and whole product
// factors. The bare variable and constants are never candidates.
func collectCandidates(e Expr, varName string) []Expr {
	var out []Expr
	var walk func(Expr)
	consider := func(c Expr) {
		if !dependsOn(c, varName) {
			return
		}
		if s, ok := c.(*Sym); ok && s.name == varName {
			return
		}
		if _, ok := c.(*Num); ok {
			return
		}
		out = append(out, c)
	}
	walk = func(ex Expr) {
		switch v := ex.(type) {
		case *Add:
			for _, term := range v.terms {
				walk(term)
			}
		case *Mul:
			for _, f := range v.factors {
				consider(f)
				walk(f)
			}
		case *Pow:
			consider(v.base)
			consider(v.exp)
			walk(v.base)
			walk(v.exp)
		case *Func:
			consider(v.arg)
			walk(v.arg)
		}
	}
	walk(e)
	return out
}

// replaceAll substitutes every structural occurrence of target in e.
func replaceAll(e, target, replacement Expr) Expr {
	if e.Equal(target) {
		return replacement
	}
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = replaceAll(t, target, replacement)
		}
		return AddOf(out...)
	case *Mul:
		out := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			out[i] = replaceAll(f, target, replacement)
		}
		return MulOf(out...)
	case *Pow:
		return PowOf(replaceAll(v.base, target, replacement), replaceAll(v.exp, target, replacement))
	case *Func:
		return FuncOf(v.name, replaceAll(v.arg, target, replacement))
	}
	return e
}

// freshVarFor picks a substitution variable name not occurring in e.
func freshVarFor(e Expr, varName string) string {
	used := FreeSymbols(e)
	used[varName] = struct{}{}
	if _, taken := used["u"]; !taken {
		return "u"
	}
	for i := 0; ; i++ {
		name := "u" + strconv.Itoa(i)
		if _, taken := used[name]; !taken {
			return name
		}
	}
}
