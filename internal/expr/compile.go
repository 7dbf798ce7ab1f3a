package expr

import (
	"fmt"
	"math"
)

// Func evaluates a compiled expression against a population vector.
type Func func(vars []int64) float64

// Binding describes what a name resolves to: either a constant or the index
// of a variable in the population vector.
type Binding struct {
	Value    float64
	Index    int
	Variable bool
}

// Const binds a name to a fixed value.
func Const(v float64) Binding { return Binding{Value: v} }

// Var binds a name to position i of the population vector.
func Var(i int) Binding { return Binding{Index: i, Variable: true} }

// Lookup resolves an identifier. The second result is false for unknown names.
type Lookup func(name string) (Binding, bool)

type builtin struct {
	arity int
	fn1   func(float64) float64
	fn2   func(float64, float64) float64
}

var builtins = map[string]builtin{
	"exp":   {arity: 1, fn1: math.Exp},
	"log":   {arity: 1, fn1: math.Log},
	"log10": {arity: 1, fn1: math.Log10},
	"sqrt":  {arity: 1, fn1: math.Sqrt},
	"abs":   {arity: 1, fn1: math.Abs},
	"floor": {arity: 1, fn1: math.Floor},
	"ceil":  {arity: 1, fn1: math.Ceil},
	"sin":   {arity: 1, fn1: math.Sin},
	"cos":   {arity: 1, fn1: math.Cos},
	"tan":   {arity: 1, fn1: math.Tan},
	"pow":   {arity: 2, fn2: math.Pow},
	"min":   {arity: 2, fn2: math.Min},
	"max":   {arity: 2, fn2: math.Max},
}

// compiled is an intermediate result: either a folded constant or a closure.
type compiled struct {
	fn      Func
	value   float64
	isConst bool
}

func constant(v float64) compiled { return compiled{value: v, isConst: true} }

func (c compiled) closure() Func {
	if c.isConst {
		v := c.value
		return func([]int64) float64 { return v }
	}
	return c.fn
}

// Compile binds every identifier in n through lookup and returns a closure.
// Subtrees that depend only on constants are folded at compile time.
func Compile(n Node, lookup Lookup) (Func, error) {
	c, err := compile(n, lookup)
	if err != nil {
		return nil, err
	}
	return c.closure(), nil
}

// Eval evaluates n as a constant expression. Any identifier that resolves to
// a variable fails with ErrVariable.
func Eval(n Node, lookup Lookup) (float64, error) {
	c, err := compile(n, lookup)
	if err != nil {
		return 0, err
	}
	if !c.isConst {
		return 0, ErrVariable
	}
	return c.value, nil
}

func compile(n Node, lookup Lookup) (compiled, error) {
	switch n := n.(type) {
	case *Num:
		return constant(n.Value), nil

	case *Ident:
		b, ok := lookup(n.Name)
		if !ok {
			return compiled{}, &SymbolError{Name: n.Name, Err: ErrUnknownSymbol}
		}
		if !b.Variable {
			return constant(b.Value), nil
		}
		idx := b.Index
		return compiled{fn: func(v []int64) float64 { return float64(v[idx]) }}, nil

	case *Unary:
		x, err := compile(n.X, lookup)
		if err != nil {
			return compiled{}, err
		}
		if x.isConst {
			return constant(-x.value), nil
		}
		f := x.fn
		return compiled{fn: func(v []int64) float64 { return -f(v) }}, nil

	case *Binary:
		return compileBinary(n, lookup)

	case *Call:
		return compileCall(n, lookup)
	}

	return compiled{}, fmt.Errorf("expr: unsupported node %T", n)
}

func apply(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	default:
		return math.Pow(a, b)
	}
}

func compileBinary(n *Binary, lookup Lookup) (compiled, error) {
	l, err := compile(n.L, lookup)
	if err != nil {
		return compiled{}, err
	}
	r, err := compile(n.R, lookup)
	if err != nil {
		return compiled{}, err
	}
	if l.isConst && r.isConst {
		return constant(apply(n.Op, l.value, r.value)), nil
	}

	lf, rf := l.closure(), r.closure()
	var fn Func
	switch n.Op {
	case "+":
		fn = func(v []int64) float64 { return lf(v) + rf(v) }
	case "-":
		fn = func(v []int64) float64 { return lf(v) - rf(v) }
	case "*":
		fn = func(v []int64) float64 { return lf(v) * rf(v) }
	case "/":
		fn = func(v []int64) float64 { return lf(v) / rf(v) }
	case "^":
		fn = func(v []int64) float64 { return math.Pow(lf(v), rf(v)) }
	default:
		return compiled{}, fmt.Errorf("expr: unsupported operator %q", n.Op)
	}
	return compiled{fn: fn}, nil
}

func compileCall(n *Call, lookup Lookup) (compiled, error) {
	b, ok := builtins[n.Fn]
	if !ok {
		return compiled{}, &SymbolError{Name: n.Fn, Err: ErrUnknownFunction}
	}
	if len(n.Args) != b.arity {
		return compiled{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, n.Fn, b.arity, len(n.Args))
	}

	args := make([]compiled, len(n.Args))
	allConst := true
	for i, a := range n.Args {
		c, err := compile(a, lookup)
		if err != nil {
			return compiled{}, err
		}
		args[i] = c
		allConst = allConst && c.isConst
	}

	if b.arity == 1 {
		if allConst {
			return constant(b.fn1(args[0].value)), nil
		}
		f, x := b.fn1, args[0].fn
		return compiled{fn: func(v []int64) float64 { return f(x(v)) }}, nil
	}

	if allConst {
		return constant(b.fn2(args[0].value, args[1].value)), nil
	}
	f, x, y := b.fn2, args[0].closure(), args[1].closure()
	return compiled{fn: func(v []int64) float64 { return f(x(v), y(v)) }}, nil
}
