package antideriv

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonRoundTrip(t *testing.T, e Expr) Expr {
	t.Helper()
	s, err := ToJSON(e)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	back, err := FromJSON(m)
	require.NoError(t, err)
	return back
}

func TestJSON_RoundTrip(t *testing.T) {
	x := S("x")
	exprs := []Expr{
		F(22, 7),
		AddOf(MulOf(N(3), PowOf(x, N(2))), SinOf(x), N(-1)),
		MulOf(ExpOf(x), LnOf(AddOf(x, N(1)))),
		IntegralOf(ExpOf(PowOf(x, N(2))), "x"),
	}
	for _, e := range exprs {
		back := jsonRoundTrip(t, e)
		require.True(t, back.Equal(Simplify(e)), "round trip changed %s to %s", e, back)
	}
}

func TestJSON_ExactRationals(t *testing.T) {
	// Values survive as rational strings, not floats.
	s, err := ToJSON(F(1, 3))
	require.NoError(t, err)
	require.Contains(t, s, `"1/3"`)
}

func TestFromJSON_Errors(t *testing.T) {
	cases := []map[string]interface{}{
		nil,
		{},
		{"type": "nope"},
		{"type": "num", "value": "one third"},
		{"type": "sym"},
		{"type": "pow", "base": map[string]interface{}{"type": "sym", "name": "x"}},
		{"type": "integral", "var": "x"},
	}
	for _, c := range cases {
		_, err := FromJSON(c)
		require.Error(t, err)
	}
}

func TestToolCall_Integrate(t *testing.T) {
	x := S("x")
	resp := HandleToolCall(ToolRequest{
		Tool: "integrate",
		Params: map[string]interface{}{
			"expr": exprJSON(PowOf(x, N(3))),
			"var":  "x",
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, "1/4*x^4", resp.String)
}

func TestToolCall_IntegrateDetailed(t *testing.T) {
	x := S("x")
	resp := HandleToolCall(ToolRequest{
		Tool: "integrate_detailed",
		Params: map[string]interface{}{
			"expr": exprJSON(ExpOf(PowOf(x, N(2)))),
			"var":  "x",
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, "non-elementary", resp.Status)
	require.Equal(t, "integral(exp(x^2), x)", resp.String)

	resp = HandleToolCall(ToolRequest{
		Tool: "integrate_detailed",
		Params: map[string]interface{}{
			"expr": exprJSON(CosOf(x)),
			"var":  "x",
		},
	})
	require.Equal(t, "closed-form", resp.Status)
	require.Equal(t, "sin(x)", resp.String)
}

func TestToolCall_DiffAndSimplify(t *testing.T) {
	x := S("x")
	resp := HandleToolCall(ToolRequest{
		Tool: "diff",
		Params: map[string]interface{}{
			"expr": exprJSON(PowOf(x, N(4))),
			"var":  "x",
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, "4*x^3", resp.String)

	resp = HandleToolCall(ToolRequest{
		Tool: "simplify",
		Params: map[string]interface{}{
			"expr": exprJSON(AddOf(x, x, MulOf(N(0), S("y")))),
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, "2*x", resp.String)
}

func TestToolCall_Degree(t *testing.T) {
	x := S("x")
	resp := HandleToolCall(ToolRequest{
		Tool: "degree",
		Params: map[string]interface{}{
			"expr": exprJSON(AddOf(PowOf(x, N(3)), x)),
			"var":  "x",
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, 3, resp.Result)

	resp = HandleToolCall(ToolRequest{
		Tool: "degree",
		Params: map[string]interface{}{
			"expr": exprJSON(SinOf(x)),
			"var":  "x",
		},
	})
	require.Contains(t, resp.Error, "not a polynomial")
}

func TestToolCall_FreeSymbols(t *testing.T) {
	resp := HandleToolCall(ToolRequest{
		Tool: "free_symbols",
		Params: map[string]interface{}{
			"expr": exprJSON(AddOf(MulOf(S("y"), S("a")), S("x"))),
		},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, []string{"a", "x", "y"}, resp.Result)
}

func TestToolCall_Errors(t *testing.T) {
	resp := HandleToolCall(ToolRequest{Tool: "integrate", Params: map[string]interface{}{}})
	require.Contains(t, resp.Error, "missing param")

	resp = HandleToolCall(ToolRequest{
		Tool: "integrate",
		Params: map[string]interface{}{
			"expr": exprJSON(S("x")),
			"var":  7,
		},
	})
	require.Contains(t, resp.Error, "must be a string")

	resp = HandleToolCall(ToolRequest{Tool: "factorize", Params: map[string]interface{}{}})
	require.Contains(t, resp.Error, "unknown tool")
}

func TestToolSpec_IsValidJSON(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(ToolSpec()), &spec))
	require.Len(t, spec.Tools, 6)
}
