package resolver

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/token"
)

func (r *resolver) resolveStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Statement) {
	switch st := stmt.(type) {
	case *ast.ExprStatement:
		r.resolveExpr(st.Expr)

	case *ast.AssignStatement:
		r.resolveExpr(st.RHS)
		if st.Op == token.ASSIGN {
			r.resolveTarget(st.LHS)
			return
		}
		// augmented assignment: the target is read, then written
		switch lhs := st.LHS.(type) {
		case *ast.Ident:
			r.lookupUse(lhs)
			r.markAssigned(lhs)
		case *ast.IndexExpr:
			r.resolveExpr(lhs.X)
			r.resolveExpr(lhs.Index)
		case *ast.DotExpr:
			r.resolveExpr(lhs.X)
		default:
			r.errorf(st.Token.Pos, "cannot use augmented assignment on this expression")
		}

	case *ast.DefStatement:
		fn := &FuncInfo{Name: st.Name.Name, Pos: st.Token.Pos, Body: st.Body}
		r.prog.Functions[st] = fn
		r.resolveFunction(fn, st.Params, func() {
			r.collectAssigned(st.Body)
			r.resolveStmts(st.Body)
		})
		r.markAssigned(st.Name)

	case *ast.IfStatement:
		r.resolveExpr(st.Cond)
		r.resolveStmts(st.True)
		r.resolveStmts(st.False)

	case *ast.ForStatement:
		r.resolveExpr(st.X)
		r.resolveTarget(st.Vars)
		s := r.scope()
		s.loopN++
		r.resolveStmts(st.Body)
		s.loopN--

	case *ast.ReturnStatement:
		if r.scope().isModule {
			r.errorf(st.Token.Pos, "return outside function")
		}
		if st.Result != nil {
			r.resolveExpr(st.Result)
		}

	case *ast.BreakStatement:
		if r.scope().loopN == 0 {
			r.errorf(st.Token.Pos, "break outside loop")
		}

	case *ast.ContinueStatement:
		if r.scope().loopN == 0 {
			r.errorf(st.Token.Pos, "continue outside loop")
		}

	case *ast.PassStatement:
		// nothing to resolve

	case *ast.LoadStatement:
		if !r.scope().isModule {
			r.errorf(st.Token.Pos, "load is only allowed at module top level")
			return
		}
		for _, b := range st.Bindings {
			r.markLoaded(b.Local)
		}
	}
}

// markLoaded records the binding for a load()-introduced name without
// tripping the reassignment guard.
func (r *resolver) markLoaded(id *ast.Ident) {
	s := r.scope()
	b, ok := s.bindings[id.Name]
	if !ok {
		b = r.bindName(id.Name, id.Token.Pos, true)
	}
	s.defined[id.Name] = true
	r.recordUse(id, s, b)
}

// resolveFunction resolves parameter defaults in the enclosing scope, then
// resolves the body inside a fresh scope with parameters pre-bound.
func (r *resolver) resolveFunction(fn *FuncInfo, params []ast.Param, body func()) {
	seen := make(map[string]bool)
	sawStar, sawStarStar := false, false
	for i, p := range params {
		if p.Default != nil {
			r.resolveExpr(p.Default)
		}
		if seen[p.Name.Name] {
			r.errorf(p.Name.Token.Pos, "duplicate parameter %q", p.Name.Name)
		}
		seen[p.Name.Name] = true
		switch {
		case p.Star:
			if sawStar || sawStarStar {
				r.errorf(p.Name.Token.Pos, "misplaced *%s parameter", p.Name.Name)
			}
			sawStar = true
		case p.StarStar:
			if sawStarStar {
				r.errorf(p.Name.Token.Pos, "duplicate **%s parameter", p.Name.Name)
			}
			sawStarStar = true
		default:
			if sawStar || sawStarStar {
				r.errorf(p.Name.Token.Pos, "parameter %q may not follow *args or **kwargs", p.Name.Name)
			}
		}
		fn.Params = append(fn.Params, ParamInfo{
			Name:     p.Name.Name,
			Slot:     i,
			Default:  p.Default,
			Star:     p.Star,
			StarStar: p.StarStar,
		})
	}

	r.pushScope(fn, false)
	s := r.scope()
	for _, p := range fn.Params {
		s.bindings[p.Name] = &bindInfo{scope: Local, slot: p.Slot}
		s.defined[p.Name] = true
		fn.NumLocals++
	}
	body()
	r.popScope()
}

func (r *resolver) resolveTarget(e ast.Expression) {
	switch t := e.(type) {
	case *ast.Ident:
		r.markAssigned(t)
	case *ast.TupleExpr:
		for _, el := range t.Elems {
			r.resolveTarget(el)
		}
	case *ast.ListExpr:
		for _, el := range t.Elems {
			r.resolveTarget(el)
		}
	case *ast.IndexExpr:
		r.resolveExpr(t.X)
		r.resolveExpr(t.Index)
	case *ast.DotExpr:
		r.resolveExpr(t.X)
	default:
		if e != nil {
			r.errorf(e.GetToken().Pos, "cannot assign to this expression")
		}
	}
}

func (r *resolver) resolveExpr(e ast.Expression) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.Ident:
		r.lookupUse(x)
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NoneLit:
		// literals resolve to themselves
	case *ast.ListExpr:
		for _, el := range x.Elems {
			r.resolveExpr(el)
		}
	case *ast.TupleExpr:
		for _, el := range x.Elems {
			r.resolveExpr(el)
		}
	case *ast.DictExpr:
		for _, en := range x.Entries {
			r.resolveExpr(en.Key)
			r.resolveExpr(en.Value)
		}
	case *ast.UnaryExpr:
		r.resolveExpr(x.X)
	case *ast.BinaryExpr:
		r.resolveExpr(x.Left)
		r.resolveExpr(x.Right)
	case *ast.CondExpr:
		r.resolveExpr(x.Cond)
		r.resolveExpr(x.True)
		r.resolveExpr(x.False)
	case *ast.IndexExpr:
		r.resolveExpr(x.X)
		r.resolveExpr(x.Index)
	case *ast.SliceExpr:
		r.resolveExpr(x.X)
		r.resolveExpr(x.Lo)
		r.resolveExpr(x.Hi)
		r.resolveExpr(x.Step)
	case *ast.DotExpr:
		r.resolveExpr(x.X)
	case *ast.CallExpr:
		r.resolveExpr(x.Fn)
		seen := make(map[string]bool)
		for _, arg := range x.Args {
			if arg.Name != nil {
				if seen[arg.Name.Name] {
					r.errorf(arg.Name.Token.Pos, "duplicate keyword argument %q", arg.Name.Name)
				}
				seen[arg.Name.Name] = true
			}
			r.resolveExpr(arg.Value)
		}
	case *ast.LambdaExpr:
		fn := &FuncInfo{Name: "lambda", Pos: x.Token.Pos, BodyExpr: x.Body}
		r.prog.Functions[x] = fn
		r.resolveFunction(fn, x.Params, func() {
			r.resolveExpr(x.Body)
		})
	case *ast.Comprehension:
		// The first iterable is evaluated before any clause variable is
		// bound; clause variables live in the enclosing scope.
		for _, cl := range x.Clauses {
			r.resolveExpr(cl.X)
			r.resolveTarget(cl.Vars)
			for _, cond := range cl.Ifs {
				r.resolveExpr(cond)
			}
		}
		if x.Key != nil {
			r.resolveExpr(x.Key)
		}
		r.resolveExpr(x.Body)
	}
}
