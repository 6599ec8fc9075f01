package antideriv

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
)

// ============================================================
// JSON serialization
// ============================================================

// exprJSON renders an expression as the wire tree: each node is an
// object with a "type" discriminator. Numbers travel as exact rational
// strings so nothing is lost to binary floats.
func exprJSON(e Expr) map[string]interface{} {
	switch v := e.(type) {
	case *Num:
		return map[string]interface{}{"type": "num", "value": v.val.RatString()}
	case *Sym:
		return map[string]interface{}{"type": "sym", "name": v.name}
	case *Add:
		terms := make([]interface{}, len(v.terms))
		for i, t := range v.terms {
			terms[i] = exprJSON(t)
		}
		return map[string]interface{}{"type": "add", "terms": terms}
	case *Mul:
		factors := make([]interface{}, len(v.factors))
		for i, f := range v.factors {
			factors[i] = exprJSON(f)
		}
		return map[string]interface{}{"type": "mul", "factors": factors}
	case *Pow:
		return map[string]interface{}{"type": "pow", "base": exprJSON(v.base), "exp": exprJSON(v.exp)}
	case *Func:
		return map[string]interface{}{"type": "func", "name": v.name, "arg": exprJSON(v.arg)}
	case *Integral:
		return map[string]interface{}{"type": "integral", "integrand": exprJSON(v.integrand), "var": v.varName}
	}
	return map[string]interface{}{"type": "unknown"}
}

// ToJSON serializes an expression to its wire form.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(exprJSON(e))
	return string(b), err
}

// FromJSON rebuilds an expression from its wire form. Rebuilt nodes go
// through the normal constructors, so a parsed tree is always in
// simplified canonical form.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}
	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}
	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return NRat(r), nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		objs, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		terms := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("add: terms[%d]: %w", i, err)
			}
			terms[i] = e
		}
		return AddOf(terms...), nil

	case "mul":
		objs, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		factors := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("mul: factors[%d]: %w", i, err)
			}
			factors[i] = e
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		base, err := FromJSON(baseM)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := FromJSON(expM)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := FromJSON(argM)
		if err != nil {
			return nil, fmt.Errorf("func: arg: %w", err)
		}
		return FuncOf(name, arg), nil

	case "integral":
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		inM, err := subObj("integrand")
		if err != nil {
			return nil, err
		}
		integrand, err := FromJSON(inM)
		if err != nil {
			return nil, fmt.Errorf("integral: integrand: %w", err)
		}
		return IntegralOf(integrand, v), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ============================================================
// MCP tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	Status string      `json:"status,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool request against the default engine.
// It never panics on malformed input; every failure comes back in the
// Error field.
func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: exprJSON(e), String: e.String()}
	}

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Simplify(e))

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Diff(e, v))

	case "integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Integrate(e, v))

	case "integrate_detailed":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res := IntegrateDetailed(e, v)
		return ToolResponse{
			Result: exprJSON(res.Antiderivative),
			Status: res.Status.String(),
			String: res.Antiderivative.String(),
		}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		names := make([]string, 0)
		for name := range FreeSymbols(e) {
			names = append(names, name)
		}
		sort.Strings(names)
		return ToolResponse{Result: names}

	case "degree":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		p, ok := polyFromExpr(e, v)
		if !ok {
			return ToolResponse{Error: fmt.Sprintf("expression is not a polynomial in %s", v)}
		}
		return ToolResponse{Result: p.degree()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the machine-readable tool catalog for agent
// registration.
func ToolSpec() string {
	return `{
  "tools": [
    {"name": "integrate", "description": "Antiderivative of expr with respect to var; unevaluated integral form when no strategy applies", "params": {"expr": "expression", "var": "string"}},
    {"name": "integrate_detailed", "description": "Antiderivative plus verdict: closed-form, non-elementary, unsupported-tower, timed-out, or unevaluated", "params": {"expr": "expression", "var": "string"}},
    {"name": "diff", "description": "Derivative of expr with respect to var", "params": {"expr": "expression", "var": "string"}},
    {"name": "simplify", "description": "Canonical simplified form of expr", "params": {"expr": "expression"}},
    {"name": "degree", "description": "Degree of expr as a polynomial in var", "params": {"expr": "expression", "var": "string"}},
    {"name": "free_symbols", "description": "Sorted symbol names occurring in expr", "params": {"expr": "expression"}}
  ]
}`
}
