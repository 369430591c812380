// Package scopeclose provides a go/analysis analyzer reporting logging scopes
// that are opened with WithNewScope and never closed.
//
// A scope handle must be closed, usually with defer, or handed to code that
// closes it: returned, passed as an argument, or stored. logctx.Run and
// logctx.Call do this automatically and are never reported.
//
// A report is suppressed by a //scopeclose:ignore comment on the same line
// or the line above.
package scopeclose

import (
	"errors"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	openerName = "WithNewScope"
	directive  = "scopeclose:ignore"
)

// Analyzer reports unclosed logging scopes.
var Analyzer = &analysis.Analyzer{
	Name:     "scopeclose",
	Doc:      "reports logging scopes opened with WithNewScope that are never closed",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// ErrNoInspector is returned when the inspect result is missing.
var ErrNoInspector = errors.New("inspector analyzer result not found")

func run(pass *analysis.Pass) (any, error) {
	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, ErrNoInspector
	}

	ignored := make(map[string]map[int]bool)
	for _, file := range pass.Files {
		if ast.IsGenerated(file) {
			continue
		}
		ignored[pass.Fset.Position(file.Pos()).Filename] = ignoreLines(pass.Fset, file)
	}

	c := &checker{pass: pass, ignored: ignored}
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)}, func(n ast.Node) {
		switch fn := n.(type) {
		case *ast.FuncDecl:
			c.checkBody(fn.Body)
		case *ast.FuncLit:
			c.checkBody(fn.Body)
		}
	})
	return nil, nil
}

type checker struct {
	pass    *analysis.Pass
	ignored map[string]map[int]bool
}

// checkBody finds scopes opened directly in body. Nested function literals
// are checked on their own, but closes inside them count for body.
func (c *checker) checkBody(body *ast.BlockStmt) {
	if body == nil {
		return
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ExprStmt:
			if call, ok := s.X.(*ast.CallExpr); ok && c.isOpener(call) {
				c.report(call.Pos(), "scope opened by %s is discarded; close it or use logctx.Run", openerName)
			}
		case *ast.AssignStmt:
			if len(s.Lhs) == 2 && len(s.Rhs) == 1 {
				if call, ok := s.Rhs[0].(*ast.CallExpr); ok && c.isOpener(call) {
					c.checkHandle(body, s.Lhs[1], call)
				}
			}
		case *ast.ValueSpec:
			if len(s.Names) == 2 && len(s.Values) == 1 {
				if call, ok := s.Values[0].(*ast.CallExpr); ok && c.isOpener(call) {
					c.checkHandle(body, s.Names[1], call)
				}
			}
		}
		return true
	})
}

// checkHandle reports the scope handle assigned to lhs unless it is closed
// or escapes somewhere in body.
func (c *checker) checkHandle(body *ast.BlockStmt, lhs ast.Expr, call *ast.CallExpr) {
	id, ok := lhs.(*ast.Ident)
	if !ok {
		// Stored in a field or element
		return
	}
	if id.Name == "_" {
		c.report(call.Pos(), "scope opened by %s is discarded; close it or use logctx.Run", openerName)
		return
	}
	obj := c.pass.TypesInfo.ObjectOf(id)
	if obj == nil || handled(c.pass.TypesInfo, body, obj) {
		return
	}
	c.report(call.Pos(), "scope %q opened by %s is never closed", id.Name, openerName)
}

// handled reports whether obj is closed or escapes in body.
func handled(info *types.Info, body *ast.BlockStmt, obj types.Object) bool {
	is := func(e ast.Expr) bool {
		id, ok := ast.Unparen(e).(*ast.Ident)
		return ok && info.Uses[id] == obj
	}

	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		switch x := n.(type) {
		case *ast.SelectorExpr:
			// scope.Close, or a method value such as defer scope.Close
			found = x.Sel.Name == "Close" && is(x.X)
		case *ast.CallExpr:
			for _, arg := range x.Args {
				if is(arg) {
					found = true
				}
			}
		case *ast.ReturnStmt:
			for _, r := range x.Results {
				if is(r) {
					found = true
				}
			}
		case *ast.AssignStmt:
			for i, r := range x.Rhs {
				if !is(r) {
					continue
				}
				if i < len(x.Lhs) {
					if lid, ok := x.Lhs[i].(*ast.Ident); ok && lid.Name == "_" {
						continue
					}
				}
				found = true
			}
		case *ast.CompositeLit:
			for _, elt := range x.Elts {
				if kv, ok := elt.(*ast.KeyValueExpr); ok {
					elt = kv.Value
				}
				if is(elt) {
					found = true
				}
			}
		case *ast.SendStmt:
			found = is(x.Value)
		}
		return !found
	})
	return found
}

// isOpener reports whether call is a WithNewScope method call returning a
// context and a closable handle.
func (c *checker) isOpener(call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != openerName {
		return false
	}
	tuple, ok := c.pass.TypesInfo.TypeOf(call).(*types.Tuple)
	if !ok || tuple.Len() != 2 {
		return false
	}
	return isContext(tuple.At(0).Type()) && hasClose(tuple.At(1).Type())
}

func isContext(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// hasClose reports whether t has a method Close() error.
func hasClose(t types.Type) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, "Close")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	return types.Identical(sig.Results().At(0).Type(), types.Universe.Lookup("error").Type())
}

func (c *checker) report(pos token.Pos, format string, args ...any) {
	p := c.pass.Fset.Position(pos)
	if lines := c.ignored[p.Filename]; lines[p.Line] || lines[p.Line-1] {
		return
	}
	c.pass.Reportf(pos, format, args...)
}

// ignoreLines returns the lines carrying an ignore directive.
func ignoreLines(fset *token.FileSet, file *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range file.Comments {
		for _, cm := range cg.List {
			if isIgnoreComment(cm.Text) {
				lines[fset.Position(cm.Pos()).Line] = true
			}
		}
	}
	return lines
}

// isIgnoreComment accepts "//scopeclose:ignore" optionally followed by a
// reason: "//scopeclose:ignore - closed by the caller".
func isIgnoreComment(text string) bool {
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	if !strings.HasPrefix(text, directive) {
		return false
	}
	rest := strings.TrimPrefix(text, directive)
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
