// Package expr implements the small arithmetic language used for parameter
// expressions and custom propensity functions.
//
// Source text is parsed into an expression tree:
//
//   - [Num]: numeric literal
//   - [Ident]: reference to a species or parameter
//   - [Unary], [Binary]: arithmetic operators (+ - * / ^ and **)
//   - [Call]: builtin function such as exp, log, sqrt, pow, min, max
//
// Trees are never evaluated from strings at runtime. [Compile] binds every
// identifier against a caller-supplied [Lookup] once, folds constant
// subtrees, and returns a [Func] closure over a population vector.
//
// # Example
//
//	n, _ := expr.Parse("k * X * (X - 1) / 2")
//	fn, _ := expr.Compile(n, lookup)
//	a := fn(populations)
package expr
