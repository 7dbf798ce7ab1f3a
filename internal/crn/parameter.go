package crn

import (
	"strconv"

	"github.com/HarryCaveMan/gillespy/internal/expr"
)

// Parameter is a named scalar. Its expression is either a literal or an
// arithmetic expression over other parameters of the same model, resolved
// once at compile time.
type Parameter struct {
	name       string
	expression string
	tree       expr.Node
}

// NewParameter parses expression eagerly so syntax errors surface at
// construction. Name references are checked by Model.Compile.
func NewParameter(name, expression string) (*Parameter, error) {
	if !expr.IsIdentifier(name) {
		return nil, newError("parameter", name, ErrInvalidParameter, "name is not a valid identifier")
	}
	tree, err := expr.Parse(expression)
	if err != nil {
		return nil, &ModelError{Kind: "parameter", Name: name, Err: ErrInvalidParameter, Detail: err.Error()}
	}
	return &Parameter{name: name, expression: expression, tree: tree}, nil
}

// NewValueParameter returns a literal parameter. It panics if name is not a
// valid identifier.
func NewValueParameter(name string, value float64) *Parameter {
	p, err := NewParameter(name, strconv.FormatFloat(value, 'g', -1, 64))
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parameter) Name() string       { return p.name }
func (p *Parameter) Expression() string { return p.expression }

// References returns the names the expression depends on.
func (p *Parameter) References() []string {
	return expr.Symbols(p.tree)
}
