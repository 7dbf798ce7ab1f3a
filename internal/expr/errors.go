package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSymbol indicates an identifier the lookup could not resolve.
	ErrUnknownSymbol = errors.New("expr: unknown symbol")

	// ErrUnknownFunction indicates a call to a function that is not a builtin.
	ErrUnknownFunction = errors.New("expr: unknown function")

	// ErrArity indicates a builtin called with the wrong number of arguments.
	ErrArity = errors.New("expr: wrong number of arguments")

	// ErrVariable indicates a variable reference in a context that requires a constant.
	ErrVariable = errors.New("expr: variable in constant expression")
)

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Src string
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at offset %d in %q: %s", e.Pos, e.Src, e.Msg)
}

// SymbolError carries the name that failed to resolve.
type SymbolError struct {
	Name string
	Err  error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Name)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}
