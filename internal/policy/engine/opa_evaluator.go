package engine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/spf13/afero"
)

const decisionQuery = "data.portfolio.gate.decision"

// DefaultPolicy allows gallery.list to anyone and gallery.upload / gallery.delete to valid sessions.
//
//go:embed default.rego
var DefaultPolicy string

// ErrNoDecision is returned when the policy does not produce a decision document.
var ErrNoDecision = errors.New("policy: query returned no decision")

// OPAEvaluator evaluates the privileged-action policy with OPA Rego.
// The query is prepared once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles source (the default policy when empty).
// A custom policy must define data.portfolio.gate.decision with allow, privileged and reason.
func NewOPAEvaluator(ctx context.Context, source string) (*OPAEvaluator, error) {
	if source == "" {
		source = DefaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"policy.rego": source})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(decisionQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// LoadPolicy reads a rego file from fs. An empty path returns the default policy.
func LoadPolicy(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return DefaultPolicy, nil
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read policy %s: %w", path, err)
	}
	return string(b), nil
}

// Evaluate runs the policy for in. On any failure the returned Decision denies.
func (e *OPAEvaluator) Evaluate(ctx context.Context, in Input) (Decision, error) {
	deny := Decision{Allowed: false, Privileged: true, Reason: "policy_error"}
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"action": string(in.Action),
		"session": map[string]interface{}{
			"valid":  in.Session.Valid,
			"reason": in.Session.Reason,
		},
	}))
	if err != nil {
		return deny, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return deny, ErrNoDecision
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return deny, ErrNoDecision
	}
	var out Decision
	out.Allowed, _ = doc["allow"].(bool)
	out.Privileged, _ = doc["privileged"].(bool)
	out.Reason, _ = doc["reason"].(string)
	return out, nil
}

// HealthCheck evaluates a public action; it fails if the prepared query cannot produce a decision.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.Evaluate(ctx, Input{Action: ActionGalleryList})
	if err != nil {
		return err
	}
	if d.Reason == "" {
		return ErrNoDecision
	}
	return nil
}
