package antideriv

import (
	"time"
)

// ============================================================
// Strategy outcomes
// ============================================================

type outcomeStatus int

const (
	outcomeNotApplicable outcomeStatus = iota
	outcomeFound
	outcomeNonElementary
	outcomeTimedOut
	outcomeUnsupportedTower
)

// outcome is the tagged result every layer produces. Layers never signal
// failure through errors or panics; NotApplicable is the only recoverable
// verdict and the dispatcher simply advances past it.
type outcome struct {
	status outcomeStatus
	result Expr
}

func found(e Expr) outcome      { return outcome{status: outcomeFound, result: e} }
func notApplicable() outcome    { return outcome{status: outcomeNotApplicable} }
func nonElementary() outcome    { return outcome{status: outcomeNonElementary} }
func timedOut() outcome         { return outcome{status: outcomeTimedOut} }
func unsupportedTower() outcome { return outcome{status: outcomeUnsupportedTower} }

// request threads the integrand, variable, recursion depth, and the
// wall-clock deadline through every nested dispatcher call. Depth is an
// explicit parameter, never ambient state, so the termination bound is
// directly testable.
type request struct {
	integrand Expr
	varName   string
	depth     int
	deadline  time.Time
}

func (r request) expired() bool {
	return !r.deadline.IsZero() && time.Now().After(r.deadline)
}

// ============================================================
// Result — the public view of an integration attempt
// ============================================================

type Status int

const (
	// StatusClosedForm: an elementary antiderivative was found.
	StatusClosedForm Status = iota
	// StatusNonElementary: proven to admit no elementary antiderivative.
	StatusNonElementary
	// StatusUnsupportedTower: the integrand needs an algebraic extension
	// tower, which the decision procedure does not cover.
	StatusUnsupportedTower
	// StatusTimedOut: the decision procedure exceeded its time budget.
	StatusTimedOut
	// StatusUnevaluated: no strategy applied; the result is the symbolic
	// fallback wrapper.
	StatusUnevaluated
)

func (s Status) String() string {
	switch s {
	case StatusClosedForm:
		return "closed-form"
	case StatusNonElementary:
		return "non-elementary"
	case StatusUnsupportedTower:
		return "unsupported-tower"
	case StatusTimedOut:
		return "timed-out"
	}
	return "unevaluated"
}

// Result pairs the antiderivative with how it was obtained. Antiderivative
// is always a valid expression: a closed form, or the unevaluated wrapper.
type Result struct {
	Antiderivative Expr
	Status         Status
}

// ============================================================
// Engine
// ============================================================

const (
	// DefaultMaxDepth caps nested dispatcher recursion (by parts and
	// substitution re-enter the dispatcher); exceeding it fails closed.
	DefaultMaxDepth = 20
	// DefaultRischBudget bounds the wall clock the decision procedure may
	// spend on one top-level call.
	DefaultRischBudget = 2 * time.Second
)

type layer struct {
	name    string
	attempt func(*Engine, request) outcome
}

// Engine is the strategy dispatcher. The table and registry are immutable
// and injected, so tests can substitute their own; an Engine holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	table       []tableRule
	registry    Registry
	maxDepth    int
	rischBudget time.Duration
	layers      []layer
}

// NewEngine builds an engine with the default table, registry, depth
// ceiling, and Risch budget.
func NewEngine() *Engine {
	return NewEngineWith(DefaultTable(), DefaultRegistry(), DefaultMaxDepth, DefaultRischBudget)
}

// NewEngineWith builds an engine around injected lookup structures.
// maxDepth <= 0 and budget <= 0 select the defaults; a negative budget
// disables the wall-clock check entirely.
func NewEngineWith(table []tableRule, registry Registry, maxDepth int, budget time.Duration) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if budget == 0 {
		budget = DefaultRischBudget
	}
	e := &Engine{table: table, registry: registry, maxDepth: maxDepth, rischBudget: budget}
	// Fixed cost order; first Found wins.
	e.layers = []layer{
		{"table", (*Engine).tryTable},
		{"rational", (*Engine).tryRational},
		{"registry", (*Engine).tryRegistry},
		{"by-parts", (*Engine).tryByParts},
		{"u-substitution", (*Engine).tryUSub},
		{"trig-reduction", (*Engine).tryTrigReduce},
		{"risch", (*Engine).tryRisch},
	}
	return e
}

// Integrate computes an antiderivative of expr with respect to varName.
// It never fails: if no closed form is found the result is the input
// wrapped as an unevaluated integral.
func (e *Engine) Integrate(expr Expr, varName string) Expr {
	return e.IntegrateDetailed(expr, varName).Antiderivative
}

// IntegrateDetailed is Integrate plus the verdict that produced the
// result, distinguishing a genuine non-elementarity proof and an
// unsupported algebraic tower from a plain fallback.
func (e *Engine) IntegrateDetailed(expr Expr, varName string) Result {
	var deadline time.Time
	if e.rischBudget > 0 {
		deadline = time.Now().Add(e.rischBudget)
	}
	out := e.attempt(request{integrand: expr, varName: varName, depth: 0, deadline: deadline})
	switch out.status {
	case outcomeFound:
		return Result{Antiderivative: out.result.Simplify(), Status: StatusClosedForm}
	case outcomeNonElementary:
		return Result{Antiderivative: IntegralOf(expr, varName), Status: StatusNonElementary}
	case outcomeTimedOut:
		return Result{Antiderivative: IntegralOf(expr, varName), Status: StatusTimedOut}
	case outcomeUnsupportedTower:
		return Result{Antiderivative: IntegralOf(expr, varName), Status: StatusUnsupportedTower}
	}
	return Result{Antiderivative: IntegralOf(expr, varName), Status: StatusUnevaluated}
}

// attempt runs the layer pipeline at one recursion depth, checking the
// wall-clock deadline on entry so deep recursions cannot overrun the
// budget. It is the single re-entry point for recursive strategies and
// it never panics:
// internal defects fail closed to NotApplicable, which the caller turns
// into the fallback wrapper.
func (e *Engine) attempt(req request) (out outcome) {
	if req.depth > e.maxDepth {
		return notApplicable()
	}
	if req.expired() {
		return timedOut()
	}
	defer func() {
		if r := recover(); r != nil {
			out = notApplicable()
		}
	}()
	req.integrand = req.integrand.Simplify()

	// An unevaluated integral in the same variable is already an answer
	// for the fallback and a dead end for every strategy.
	if in, ok := req.integrand.(*Integral); ok && in.varName == req.varName {
		return notApplicable()
	}

	// Constants integrate to c*x directly.
	if !dependsOn(req.integrand, req.varName) {
		return found(MulOf(req.integrand, S(req.varName)))
	}

	// Linearity: integrate sums term by term. All terms must close; a
	// single stuck term sends the whole sum to the fallback.
	if add, ok := req.integrand.(*Add); ok {
		parts := make([]Expr, len(add.terms))
		for i, t := range add.terms {
			sub, ok := e.recurse(t, req)
			if !ok {
				return notApplicable()
			}
			parts[i] = sub
		}
		return found(AddOf(parts...))
	}

	// Linearity: pull out factors free of the variable.
	if m, ok := req.integrand.(*Mul); ok {
		var constant, varying []Expr
		for _, f := range m.factors {
			if dependsOn(f, req.varName) {
				varying = append(varying, f)
			} else {
				constant = append(constant, f)
			}
		}
		if len(constant) > 0 && len(varying) > 0 {
			out := e.attempt(request{
				integrand: MulOf(varying...),
				varName:   req.varName,
				depth:     req.depth + 1,
				deadline:  req.deadline,
			})
			if out.status == outcomeFound {
				return found(MulOf(append(constant, out.result)...))
			}
			// A verdict on the varying part holds for the whole product.
			return out
		}
	}

	for _, l := range e.layers {
		out := l.attempt(e, req)
		switch out.status {
		case outcomeFound, outcomeNonElementary, outcomeTimedOut, outcomeUnsupportedTower:
			return out
		}
	}
	return notApplicable()
}

// recurse re-enters the pipeline one level deeper on behalf of a layer.
// Anything but Found reads as failure to the calling strategy.
func (e *Engine) recurse(f Expr, req request) (Expr, bool) {
	out := e.attempt(request{
		integrand: f,
		varName:   req.varName,
		depth:     req.depth + 1,
		deadline:  req.deadline,
	})
	if out.status == outcomeFound {
		return out.result, true
	}
	return nil, false
}

// ============================================================
// Package-level convenience API
// ============================================================

// defaultEngine is built once and never mutated.
var defaultEngine = NewEngine()

// Integrate integrates with the default engine.
func Integrate(expr Expr, varName string) Expr {
	return defaultEngine.Integrate(expr, varName)
}

// IntegrateDetailed integrates with the default engine, returning the
// verdict alongside the antiderivative.
func IntegrateDetailed(expr Expr, varName string) Result {
	return defaultEngine.IntegrateDetailed(expr, varName)
}
