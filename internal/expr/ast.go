package expr

import (
	"sort"
	"strconv"
	"strings"
)

// Node is a parsed expression tree.
type Node interface {
	String() string
}

type Num struct {
	Value float64
}

type Ident struct {
	Name string
}

type Unary struct {
	Op string
	X  Node
}

type Binary struct {
	Op   string
	L, R Node
}

type Call struct {
	Fn   string
	Args []Node
}

func (n *Num) String() string   { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *Ident) String() string { return n.Name }
func (n *Unary) String() string { return n.Op + n.X.String() }

func (n *Binary) String() string {
	return "(" + n.L.String() + " " + n.Op + " " + n.R.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Fn + "(" + strings.Join(args, ", ") + ")"
}

// Symbols returns the distinct identifiers referenced by n, sorted.
func Symbols(n Node) []string {
	seen := make(map[string]struct{})
	walk(n, func(id *Ident) { seen[id.Name] = struct{}{} })

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func walk(n Node, visit func(*Ident)) {
	switch n := n.(type) {
	case *Ident:
		visit(n)
	case *Unary:
		walk(n.X, visit)
	case *Binary:
		walk(n.L, visit)
		walk(n.R, visit)
	case *Call:
		for _, a := range n.Args {
			walk(a, visit)
		}
	}
}
