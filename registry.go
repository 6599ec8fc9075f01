package antideriv

// Rule produces the antiderivative of name(u) with respect to u itself.
// The lookup layer composes it with the linear-argument law
// ∫f(a*x+b) dx = F(a*x+b)/a.
type Rule func(u Expr) Expr

// Registry maps function names to antiderivative rules. It is built once,
// never mutated, and injected into the Engine so tests can substitute
// their own set.
type Registry map[string]Rule

// Lookup is an O(1) name-keyed fetch.
func (r Registry) Lookup(name string) (Rule, bool) {
	rule, ok := r[name]
	return rule, ok
}

// DefaultRegistry returns the built-in antiderivative rules for every
// function the kernel knows how to differentiate.
func DefaultRegistry() Registry {
	return Registry{
		"sin": func(u Expr) Expr { return MulOf(N(-1), CosOf(u)) },
		"cos": func(u Expr) Expr { return SinOf(u) },
		"tan": func(u Expr) Expr { return MulOf(N(-1), LnOf(AbsOf(CosOf(u)))) },
		"exp": func(u Expr) Expr { return ExpOf(u) },
		"ln":  func(u Expr) Expr { return AddOf(MulOf(u, LnOf(u)), MulOf(N(-1), u)) },
		"abs": func(u Expr) Expr { return MulOf(F(1, 2), u, AbsOf(u)) },
		"asin": func(u Expr) Expr {
			return AddOf(MulOf(u, AsinOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
		},
		"acos": func(u Expr) Expr {
			return SubOf(MulOf(u, AcosOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
		},
		"atan": func(u Expr) Expr {
			return SubOf(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
		},
		"sinh": func(u Expr) Expr { return CoshOf(u) },
		"cosh": func(u Expr) Expr { return SinhOf(u) },
		"tanh": func(u Expr) Expr { return LnOf(CoshOf(u)) },
	}
}

// tryRegistry handles direct and linear-argument function applications;
// anything beyond ∫f(a*x+b) dx is out of this layer's scope.
func (e *Engine) tryRegistry(req request) outcome {
	f, ok := req.integrand.(*Func)
	if !ok {
		return notApplicable()
	}
	rule, ok := e.registry.Lookup(f.name)
	if !ok {
		return notApplicable()
	}
	a, _, ok := matchLinear(f.arg, req.varName)
	if !ok {
		return notApplicable()
	}
	return found(MulOf(rule(f.arg), PowOf(a, N(-1))))
}
