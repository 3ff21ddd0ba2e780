package bayes

import (
	"sort"
)

// Query returns the posterior distribution P(variable | evidence) by variable
// elimination. The result is indexed by state.
//
// Only the ancestors of the query and evidence variables take part; every other
// variable sums out to one and cannot change the answer. Factors that reduce to
// constants are dropped after checking they are non-zero, since normalization
// cancels them.
func (n *Network) Query(variable string, evidence Assignment) ([]float64, error) {
	if _, ok := n.variables[variable]; !ok {
		return nil, evidenceErr(variable, "unknown query variable")
	}
	if err := n.ValidateEvidence(evidence); err != nil {
		return nil, err
	}
	if _, observed := evidence[variable]; observed {
		return nil, evidenceErr(variable, "query variable is also observed")
	}

	scope := []string{variable}
	for name := range evidence {
		scope = append(scope, name)
	}
	relevant := n.ancestors(scope)

	var factors []Factor
	for _, name := range n.order {
		if !relevant[name] {
			continue
		}
		f := n.factors[name].Reduce(evidence)
		if f.Scalar() {
			if f.values[0] == 0 {
				return nil, evidenceErr("", "evidence has zero probability")
			}
			continue
		}
		factors = append(factors, f)
	}

	for _, hidden := range n.eliminationOrder(factors, variable) {
		var joint *Factor
		rest := factors[:0:0]
		for _, f := range factors {
			if f.indexOf(hidden) < 0 {
				rest = append(rest, f)
				continue
			}
			if joint == nil {
				cp := f
				joint = &cp
			} else {
				prod := joint.Product(f)
				joint = &prod
			}
		}
		factors = rest
		if joint == nil {
			continue
		}
		summed := joint.SumOut(hidden)
		if summed.Scalar() {
			if summed.values[0] == 0 {
				return nil, evidenceErr("", "evidence has zero probability")
			}
			continue
		}
		factors = append(factors, summed)
	}

	result := NewFactor([]string{variable}, []int{n.variables[variable].Card}, uniform(n.variables[variable].Card))
	for _, f := range factors {
		result = result.Product(f)
	}
	normalized, ok := result.Normalize()
	if !ok {
		return nil, evidenceErr("", "evidence has zero probability")
	}
	return normalized.Values(), nil
}

// ValidateEvidence checks that every observed variable exists and that its
// state is within the variable's cardinality.
func (n *Network) ValidateEvidence(evidence Assignment) error {
	names := make([]string, 0, len(evidence))
	for name := range evidence {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, ok := n.variables[name]
		if !ok {
			return evidenceErr(name, "unknown variable")
		}
		state := evidence[name]
		if state < 0 || state >= v.Card {
			return evidenceErr(name, "state %d outside 0..%d", state, v.Card-1)
		}
	}
	return nil
}

// eliminationOrder picks hidden variables greedily by the size of the factor
// their elimination would create, breaking ties by topological position.
func (n *Network) eliminationOrder(factors []Factor, query string) []string {
	scopes := make([][]string, len(factors))
	hidden := make(map[string]bool)
	for i, f := range factors {
		scopes[i] = append([]string(nil), f.vars...)
		for _, v := range f.vars {
			if v != query {
				hidden[v] = true
			}
		}
	}

	var order []string
	for len(hidden) > 0 {
		best, bestWeight := "", -1
		for name := range hidden {
			union := make(map[string]bool)
			for _, s := range scopes {
				if indexIn(s, name) < 0 {
					continue
				}
				for _, v := range s {
					union[v] = true
				}
			}
			weight := 1
			for v := range union {
				weight *= n.variables[v].Card
			}
			if bestWeight < 0 || weight < bestWeight ||
				(weight == bestWeight && n.position[name] < n.position[best]) {
				best, bestWeight = name, weight
			}
		}

		var merged []string
		kept := scopes[:0:0]
		for _, s := range scopes {
			if indexIn(s, best) < 0 {
				kept = append(kept, s)
				continue
			}
			for _, v := range s {
				if v != best && indexIn(merged, v) < 0 {
					merged = append(merged, v)
				}
			}
		}
		if len(merged) > 0 {
			kept = append(kept, merged)
		}
		scopes = kept
		delete(hidden, best)
		order = append(order, best)
	}
	return order
}

func uniform(card int) []float64 {
	out := make([]float64, card)
	for i := range out {
		out[i] = 1
	}
	return out
}
