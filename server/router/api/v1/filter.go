package v1

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/pkg/errors"
)

// extractToolFromFilter parses a CEL filter expression of the form
// `tool == 'kiaan'` and returns the tool name. An empty filter returns
// an empty string and no error.
func extractToolFromFilter(filterStr string) (string, error) {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" {
		return "", nil
	}

	env, err := cel.NewEnv(
		cel.Variable("tool", cel.StringType),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to create CEL environment")
	}

	celAST, issues := env.Compile(filterStr)
	if issues != nil && issues.Err() != nil {
		return "", errors.Wrapf(issues.Err(), "invalid filter expression: %s", filterStr)
	}

	tool, err := extractToolFromAST(celAST.NativeRep().Expr())
	if err != nil {
		return "", err
	}
	return tool, nil
}

// extractToolFromAST extracts the tool value from a CEL AST expression.
func extractToolFromAST(expr ast.Expr) (string, error) {
	if expr == nil {
		return "", errors.New("empty expression")
	}

	if expr.Kind() != ast.CallKind {
		return "", errors.New("filter must be a comparison expression (e.g., tool == 'kiaan')")
	}

	call := expr.AsCall()
	if call.FunctionName() != "_==_" {
		return "", errors.Errorf("unsupported operator: %s (only '==' is supported)", call.FunctionName())
	}

	args := call.Args()
	if len(args) != 2 {
		return "", errors.New("invalid comparison expression")
	}

	if tool, ok := extractToolFromComparison(args[0], args[1]); ok {
		return tool, nil
	}
	if tool, ok := extractToolFromComparison(args[1], args[0]); ok {
		return tool, nil
	}

	return "", errors.New("filter must compare 'tool' field with a string constant")
}

// extractToolFromComparison tries to extract the tool value if left is
// the 'tool' identifier and right is a string constant.
func extractToolFromComparison(left, right ast.Expr) (string, bool) {
	if left.Kind() != ast.IdentKind {
		return "", false
	}
	if left.AsIdent() != "tool" {
		return "", false
	}

	if right.Kind() != ast.LiteralKind {
		return "", false
	}
	literal := right.AsLiteral()
	value, ok := literal.Value().(string)
	if !ok {
		return "", false
	}
	return value, true
}
