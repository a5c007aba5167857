// Package assert evaluates the expected_* columns of a test step against an API response.
package assert

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/shopspring/decimal"
	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

// Outcome is the result of one check.
type Outcome struct {
	Name     string `json:"name"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// Result collects the outcomes of every declared expectation.
type Result struct {
	Outcomes []Outcome
}

// Passed reports whether every check passed. No checks means a pass.
func (r Result) Passed() bool {
	for _, o := range r.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// Failures returns the failed outcomes.
func (r Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			out = append(out, o)
		}
	}
	return out
}

// JSON renders the outcomes for the result record.
func (r Result) JSON() string {
	if len(r.Outcomes) == 0 {
		return "[]"
	}
	data, err := json.Marshal(r.Outcomes)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Response field paths. Each is also tried below "payment." and "refund.".
const (
	pathTotalAuthAmount    = "totalAuthorizationAmount.amount"
	pathCardSecurityResult = "cardPaymentData.ecommerceData.cardSecurityCodeResult"
	pathAVSResult          = "cardPaymentData.ecommerceData.addressVerificationResult"
	pathMerchantAdvice     = "additionalResponseData.merchantAdviceCode"
)

// Evaluate runs every expectation declared on step against resp.
// depCtx is the chain's dependency context, visible to expressions.
func Evaluate(step api.TestStep, resp *acquiring.Response, depCtx map[string]string) Result {
	var res Result
	e := step.Expect
	if e.Empty() {
		return res
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	if e.HTTPStatus != nil {
		res.add("httpStatus", strconv.Itoa(*e.HTTPStatus), strconv.Itoa(statusCode), *e.HTTPStatus == statusCode)
	}
	if e.ResponseCode != "" {
		res.equal("responseCode", e.ResponseCode, field(resp, "responseCode"))
	}
	if e.Status != "" {
		res.equal("status", e.Status, resp.Status())
	}
	if e.TotalAuthAmount != nil {
		res.amount("totalAuthorizationAmount", *e.TotalAuthAmount, field(resp, pathTotalAuthAmount))
	}
	if e.CardSecurityResult != "" {
		res.equal("cardSecurityResult", e.CardSecurityResult,
			first(field(resp, pathCardSecurityResult), field(resp, "cardPaymentData.ecommerceData.cardSecurityResult")))
	}
	if e.AVSResult != "" {
		res.equal("addressVerificationResult", e.AVSResult, field(resp, pathAVSResult))
	}
	if e.MerchantAdviceCode != "" {
		res.equal("merchantAdviceCode", e.MerchantAdviceCode, field(resp, pathMerchantAdvice))
	}
	if e.Expr != "" {
		ok, err := Expr(e.Expr, resp, depCtx)
		actual := strconv.FormatBool(ok)
		if err != nil {
			actual = err.Error()
		}
		res.add("expr", e.Expr, actual, err == nil && ok)
	}
	return res
}

func (r *Result) add(name, expected, actual string, passed bool) {
	r.Outcomes = append(r.Outcomes, Outcome{Name: name, Expected: expected, Actual: actual, Passed: passed})
}

func (r *Result) equal(name, expected, actual string) {
	r.add(name, expected, actual, actual != "" && actual == expected)
}

func (r *Result) amount(name string, expected int64, actual string) {
	want := decimal.NewFromInt(expected)
	got, err := decimal.NewFromString(actual)
	r.add(name, want.String(), actual, err == nil && got.Equal(want))
}

func field(resp *acquiring.Response, path string) string {
	return resp.First(path, "payment."+path, "refund."+path)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Expr evaluates a boolean expression against the response. The environment
// exposes status, http_status, body and context.
func Expr(expression string, resp *acquiring.Response, depCtx map[string]string) (bool, error) {
	env := map[string]any{
		"status":      resp.Status(),
		"http_status": 0,
		"body":        map[string]any{},
		"context":     depCtx,
	}
	if depCtx == nil {
		env["context"] = map[string]string{}
	}
	if resp != nil {
		env["http_status"] = resp.StatusCode
		env["body"] = normalize(resp.Body)
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval expression %q: %w", expression, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return bool (got %T)", expression, output)
	}
	return result, nil
}

// normalize turns json.Number values into int or float64 so expressions can compare them.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
