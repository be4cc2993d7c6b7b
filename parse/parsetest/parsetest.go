package parsetest

import (
	"testing"

	"github.com/brimlang/brim/ast"
	"github.com/brimlang/brim/parse"
)

// MustParse parses source text and fails the test on error.
func MustParse(t *testing.T, src string) *ast.AST {
	t.Helper()
	parsed, err := parse.Parse(Lex("test.br", src), parse.Config{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

// ParseErr parses source text and returns the error, failing the test if
// parsing unexpectedly succeeds.
func ParseErr(t *testing.T, src string) error {
	t.Helper()
	_, err := parse.Parse(Lex("test.br", src), parse.Config{})
	if err == nil {
		t.Fatalf("parse: expected failure for %q", src)
	}
	return err
}

// FindFunc returns the first function with the given name.
func FindFunc(t *testing.T, tree *ast.AST, name string) *ast.Func {
	t.Helper()
	for i := range tree.Funcs {
		if tree.Funcs[i].Name.Str() == name {
			return &tree.Funcs[i]
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

// ParseExpr parses a single expression by wrapping it in a function body
// and extracting the returned value.
func ParseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	tree := MustParse(t, "func main void {\n return "+src+"\n}\n")
	fn := FindFunc(t, tree, "main")
	if len(fn.Statements) == 0 {
		t.Fatalf("no statements parsed for %q", src)
	}
	ret, ok := fn.Statements[len(fn.Statements)-1].(*ast.Return)
	if !ok {
		t.Fatalf("expected return statement for %q", src)
	}
	return ret.Value
}

// ParseStmts parses a function body and returns its statement list.
func ParseStmts(t *testing.T, body string) ast.ExprList {
	t.Helper()
	tree := MustParse(t, "func main void {\n"+body+"\n}\n")
	return FindFunc(t, tree, "main").Statements
}
