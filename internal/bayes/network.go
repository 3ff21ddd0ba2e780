// Package bayes implements small discrete Bayesian networks with exact
// inference by variable elimination.
//
// A Network is built once from its variables, directed edges and conditional
// probability tables, validated, and never mutated afterwards. Queries only
// read the network, so a single *Network can serve any number of goroutines
// without locking.
package bayes

import (
	"math"
)

// RowSumTolerance is the allowed deviation of a CPT row sum from 1.
const RowSumTolerance = 1e-6

// Variable is a named discrete random variable with states 0..Card-1.
type Variable struct {
	Name string
	Card int
}

// Edge is a directed parent -> child relation.
type Edge struct {
	From string
	To   string
}

// CPT is the conditional probability table of one variable.
//
// Rows are ordered row-major over Parents (the last parent varies fastest) and
// each row is a distribution over the variable's states. A root variable has
// no parents and exactly one row.
type CPT struct {
	Variable string
	Parents  []string
	Rows     [][]float64
}

// Assignment maps variable names to observed states.
type Assignment map[string]int

// Network is an immutable, validated Bayesian network.
type Network struct {
	variables map[string]Variable
	order     []string // topological
	position  map[string]int
	parents   map[string][]string
	cpts      map[string]CPT
	factors   map[string]Factor
}

// NewNetwork validates the structure and tables and returns the network.
// Every failure wraps ErrConfiguration.
func NewNetwork(vars []Variable, edges []Edge, cpts []CPT) (*Network, error) {
	n := &Network{
		variables: make(map[string]Variable, len(vars)),
		position:  make(map[string]int, len(vars)),
		parents:   make(map[string][]string, len(vars)),
		cpts:      make(map[string]CPT, len(cpts)),
		factors:   make(map[string]Factor, len(cpts)),
	}

	if len(vars) == 0 {
		return nil, configErr("", "network has no variables")
	}
	declared := make([]string, 0, len(vars))
	for _, v := range vars {
		if v.Name == "" {
			return nil, configErr("", "variable name must not be empty")
		}
		if v.Card < 1 {
			return nil, configErr(v.Name, "cardinality must be at least 1, got %d", v.Card)
		}
		if _, dup := n.variables[v.Name]; dup {
			return nil, configErr(v.Name, "declared more than once")
		}
		n.variables[v.Name] = v
		declared = append(declared, v.Name)
	}

	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if _, ok := n.variables[e.From]; !ok {
			return nil, configErr(e.From, "edge %s->%s references unknown variable", e.From, e.To)
		}
		if _, ok := n.variables[e.To]; !ok {
			return nil, configErr(e.To, "edge %s->%s references unknown variable", e.From, e.To)
		}
		if e.From == e.To {
			return nil, configErr(e.From, "self loop")
		}
		if seen[e] {
			return nil, configErr(e.To, "duplicate edge from %s", e.From)
		}
		seen[e] = true
		n.parents[e.To] = append(n.parents[e.To], e.From)
	}

	order, err := topologicalOrder(declared, edges)
	if err != nil {
		return nil, err
	}
	n.order = order
	for i, name := range order {
		n.position[name] = i
	}

	for _, cpt := range cpts {
		if _, ok := n.variables[cpt.Variable]; !ok {
			return nil, configErr(cpt.Variable, "CPT for unknown variable")
		}
		if _, dup := n.cpts[cpt.Variable]; dup {
			return nil, configErr(cpt.Variable, "more than one CPT")
		}
		if err := n.checkCPT(cpt); err != nil {
			return nil, err
		}
		stored := copyCPT(cpt)
		n.cpts[cpt.Variable] = stored
		n.factors[cpt.Variable] = n.cptFactor(stored)
	}
	for _, name := range declared {
		if _, ok := n.cpts[name]; !ok {
			return nil, configErr(name, "missing CPT")
		}
	}

	return n, nil
}

// topologicalOrder runs Kahn's algorithm, taking ready variables in
// declaration order so the result is deterministic.
func topologicalOrder(declared []string, edges []Edge) ([]string, error) {
	indegree := make(map[string]int, len(declared))
	children := make(map[string][]string, len(declared))
	for _, e := range edges {
		indegree[e.To]++
		children[e.From] = append(children[e.From], e.To)
	}

	order := make([]string, 0, len(declared))
	done := make(map[string]bool, len(declared))
	for len(order) < len(declared) {
		progressed := false
		for _, name := range declared {
			if done[name] || indegree[name] > 0 {
				continue
			}
			done[name] = true
			order = append(order, name)
			for _, c := range children[name] {
				indegree[c]--
			}
			progressed = true
		}
		if !progressed {
			for _, name := range declared {
				if !done[name] {
					return nil, configErr(name, "edges contain a cycle")
				}
			}
		}
	}
	return order, nil
}

func (n *Network) checkCPT(cpt CPT) error {
	v := n.variables[cpt.Variable]

	declared := n.parents[cpt.Variable]
	if len(cpt.Parents) != len(declared) {
		return configErr(cpt.Variable, "CPT lists %d parents, edges declare %d", len(cpt.Parents), len(declared))
	}
	listed := make(map[string]bool, len(cpt.Parents))
	for _, p := range cpt.Parents {
		if listed[p] {
			return configErr(cpt.Variable, "parent %s listed twice", p)
		}
		listed[p] = true
	}
	for _, p := range declared {
		if !listed[p] {
			return configErr(cpt.Variable, "CPT does not list parent %s", p)
		}
	}

	want := 1
	for _, p := range cpt.Parents {
		want *= n.variables[p].Card
	}
	if len(cpt.Rows) != want {
		return configErr(cpt.Variable, "CPT has %d rows, parents require %d", len(cpt.Rows), want)
	}

	for i, row := range cpt.Rows {
		if len(row) != v.Card {
			return configErr(cpt.Variable, "row %d has %d entries, cardinality is %d", i, len(row), v.Card)
		}
		sum := 0.0
		for _, p := range row {
			if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return configErr(cpt.Variable, "row %d contains invalid probability %v", i, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > RowSumTolerance {
			return configErr(cpt.Variable, "row %d sums to %v", i, sum)
		}
	}
	return nil
}

// cptFactor lays a CPT out as a factor over (parents..., variable).
func (n *Network) cptFactor(cpt CPT) Factor {
	vars := append(append([]string(nil), cpt.Parents...), cpt.Variable)
	cards := make([]int, len(vars))
	for i, name := range vars {
		cards[i] = n.variables[name].Card
	}
	values := make([]float64, 0, product(cards))
	for _, row := range cpt.Rows {
		values = append(values, row...)
	}
	return Factor{vars: vars, cards: cards, values: values}
}

func copyCPT(cpt CPT) CPT {
	out := CPT{
		Variable: cpt.Variable,
		Parents:  append([]string(nil), cpt.Parents...),
		Rows:     make([][]float64, len(cpt.Rows)),
	}
	for i, row := range cpt.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}

// Variables returns the variables in topological order.
func (n *Network) Variables() []Variable {
	out := make([]Variable, len(n.order))
	for i, name := range n.order {
		out[i] = n.variables[name]
	}
	return out
}

// Variable looks up a variable by name.
func (n *Network) Variable(name string) (Variable, bool) {
	v, ok := n.variables[name]
	return v, ok
}

// Parents returns the parents of name in CPT order.
func (n *Network) Parents(name string) []string {
	return append([]string(nil), n.cpts[name].Parents...)
}

// CPT returns a copy of the table for name.
func (n *Network) CPT(name string) (CPT, bool) {
	cpt, ok := n.cpts[name]
	if !ok {
		return CPT{}, false
	}
	return copyCPT(cpt), true
}

// ancestors returns names plus every variable with a directed path into them.
func (n *Network) ancestors(names []string) map[string]bool {
	out := make(map[string]bool)
	stack := append([]string(nil), names...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[name] {
			continue
		}
		out[name] = true
		stack = append(stack, n.parents[name]...)
	}
	return out
}
